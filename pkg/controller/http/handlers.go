package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/willow-lab/leetboard/pkg/domain/model"
	"github.com/willow-lab/leetboard/pkg/domain/types"
	"github.com/willow-lab/leetboard/pkg/usecase"
	"github.com/willow-lab/leetboard/pkg/utils/async"
	"github.com/willow-lab/leetboard/pkg/utils/errutil"
	"github.com/willow-lab/leetboard/pkg/utils/safe"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	cards, err := s.uc.Dashboard(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := s.uc.Roster(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, roster)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	username := types.Username(chi.URLParam(r, "username"))
	stats, err := s.uc.GetCachedSnapshot(r.Context(), username)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleContest(w http.ResponseWriter, r *http.Request) {
	username := types.Username(chi.URLParam(r, "username"))
	contest, err := s.uc.Stats().FetchContest(r.Context(), username)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, contest)
}

// handleRefreshAll runs a bulk refresh cycle. By default the cycle runs
// within the request and progress is streamed as server-sent events,
// followed by the final report; closing the connection cancels the cycle.
// With ?async=1 the cycle is dispatched in the background and the handler
// returns 202 immediately.
func (s *Server) handleRefreshAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roster, err := s.uc.Roster(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	if r.URL.Query().Get("async") == "1" {
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := s.uc.RefreshAll(ctx, roster)
			return errutil.Handle(ctx, err, "background refresh cycle failed")
		})
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		errutil.HandleHTTP(ctx, w, goerr.New("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := s.uc.WithOptions(usecase.WithProgress(func(p model.RefreshProgress) {
		writeEvent(w, r, "progress", p)
		flusher.Flush()
	}))

	report, err := stream.RefreshAll(ctx, roster)
	if err != nil && report == nil {
		writeEvent(w, r, "error", map[string]string{"error": err.Error()})
		flusher.Flush()
		return
	}

	writeEvent(w, r, "report", report)
	flusher.Flush()
}

func (s *Server) handleRefreshOne(w http.ResponseWriter, r *http.Request) {
	username := types.Username(chi.URLParam(r, "username"))
	stats, err := s.uc.RefreshByUsername(r.Context(), username)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.uc.Stats().CacheStats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.uc.Stats().Invalidate()
	if s.rosterInvalidator != nil {
		s.rosterInvalidator.InvalidateRoster()
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
	safe.Write(r.Context(), w, []byte("\n"))
}

func writeEvent(w http.ResponseWriter, r *http.Request, event string, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		return
	}
	safe.Write(r.Context(), w, []byte("event: "+event+"\ndata: "))
	safe.Write(r.Context(), w, data)
	safe.Write(r.Context(), w, []byte("\n\n"))
}
