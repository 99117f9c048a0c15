package localnode

import (
	"encoding/json"
	"net/http"
	"time"

	"SecretQuery/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler, stream *BlockStream, logger *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get(models.RouteNodeInfo, handler.NodeInfo)
	r.Get(models.RouteLatestBlock, handler.LatestBlock)
	r.Get(models.RouteContractsByCode+"{codeId}", handler.ContractsByCode)
	r.Get(models.RouteCodeHashByAddr+"{contractAddress}", handler.CodeHash)
	r.Get(models.RouteQueryContract+"{contractAddress}", handler.QueryContract)
	r.Get(models.RouteTxEncryptionKey, handler.TxKey)

	if stream != nil {
		r.Get(models.RouteWebsocket, stream.ServeHTTP)
	}

	return &Server{Router: r}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code int, msg string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": msg,
		"details": []any{},
	})
}
