package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hperssn/buildcalc/internal/logging"
	"github.com/hperssn/buildcalc/internal/runner"
)

// StreamReplies pushes every reply produced for the caller as a server-sent
// event until the client goes away.
func StreamReplies(manager *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			respondError(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		events, err := manager.Events(IdentityFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		log := logging.FromContext(r.Context())
		for {
			select {
			case reply, ok := <-events:
				if !ok {
					return
				}

				data, err := json.Marshal(reply)
				if err != nil {
					log.Error("encode event", "error", err)
					continue
				}
				if err := writeEvent(w, data); err != nil {
					log.Debug("event stream closed", "error", err)
					return
				}
				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}

func writeEvent(w io.Writer, data []byte) error {
	for _, part := range [][]byte{[]byte("event: reply\ndata: "), data, []byte("\n\n")} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}
