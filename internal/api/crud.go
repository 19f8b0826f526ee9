package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/opencms/sectionbanner/internal/logic"
	"github.com/opencms/sectionbanner/internal/models"
)

// persistBanners writes the full banner list back to Postgres, refreshes the
// in-memory snapshot and notifies peers. Banner identity is positional, so
// every write rewrites the whole list to keep positions dense.
func (s *Server) persistBanners(banners []models.Banner) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.PG != nil {
		if err := s.PG.ReplaceBanners(banners); err != nil {
			return err
		}
	}
	if err := s.Banners.SetBanners(banners); err != nil {
		return err
	}
	s.notifyInvalidation(logic.BannerListCacheTag)
	return nil
}

// snapshotCopy returns a mutable copy of the current banner list. The
// snapshot itself must never be written to.
func (s *Server) snapshotCopy() []models.Banner {
	cur := s.Banners.GetBanners()
	banners := make([]models.Banner, len(cur))
	copy(banners, cur)
	return banners
}

// bannerIndex parses the {index} path variable against the current list size.
func bannerIndex(r *http.Request, count int) (int, bool) {
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || idx < 0 || idx >= count {
		return 0, false
	}
	return idx, true
}

// ListBanners returns all banners in stored order.
func (s *Server) ListBanners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Banners.GetBanners())
}

// GetBanner returns the banner at the given position.
func (s *Server) GetBanner(w http.ResponseWriter, r *http.Request) {
	banners := s.Banners.GetBanners()
	idx, ok := bannerIndex(r, len(banners))
	if !ok {
		http.Error(w, "banner not found", http.StatusNotFound)
		return
	}
	writeJSON(w, banners[idx])
}

// CreateBanner appends a banner to the end of the list.
func (s *Server) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var b models.Banner
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, "invalid banner payload", http.StatusBadRequest)
		return
	}

	banners := append(s.snapshotCopy(), b)
	if err := s.persistBanners(banners); err != nil {
		s.Logger.Error("create banner failed", zap.Error(err))
		http.Error(w, "failed to store banner", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]int{"index": len(banners) - 1})
}

// UpdateBanner replaces the banner at the given position. Translations in the
// payload are merged by language; omitted languages survive the update.
func (s *Server) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	var in models.Banner
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid banner payload", http.StatusBadRequest)
		return
	}

	banners := s.snapshotCopy()
	idx, ok := bannerIndex(r, len(banners))
	if !ok {
		http.Error(w, "banner not found", http.StatusNotFound)
		return
	}

	cur := banners[idx]
	// The translations slice still aliases the published snapshot.
	cur.Translations = append([]models.Translation(nil), cur.Translations...)
	cur.ImageID = in.ImageID
	cur.TargetSections = in.TargetSections
	cur.CSSClass = in.CSSClass
	for _, t := range in.Translations {
		merged := false
		for i := range cur.Translations {
			if cur.Translations[i].Lang == t.Lang {
				cur.Translations[i] = t
				merged = true
				break
			}
		}
		if !merged {
			cur.Translations = append(cur.Translations, t)
		}
	}
	banners[idx] = cur

	if err := s.persistBanners(banners); err != nil {
		s.Logger.Error("update banner failed", zap.Error(err))
		http.Error(w, "failed to store banner", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cur)
}

// DeleteBanner removes the banner at the given position. Banners after it
// shift down by one.
func (s *Server) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	banners := s.snapshotCopy()
	idx, ok := bannerIndex(r, len(banners))
	if !ok {
		http.Error(w, "banner not found", http.StatusNotFound)
		return
	}

	banners = append(banners[:idx], banners[idx+1:]...)
	if err := s.persistBanners(banners); err != nil {
		s.Logger.Error("delete banner failed", zap.Error(err))
		http.Error(w, "failed to delete banner", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
