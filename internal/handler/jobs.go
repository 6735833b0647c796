package handler

import (
	"net/http"
	"strconv"

	"planta/internal/apierror"
	"planta/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// JobsHandler exposes the dead letter queues of the async workers.
type JobsHandler struct{ rdb redis.Cmdable }

func NewJobsHandler(rdb redis.Cmdable) *JobsHandler { return &JobsHandler{rdb: rdb} }

// ColaDLQ is the backlog of one job type.
type ColaDLQ struct {
	Tipo      string `json:"tipo"`
	Cola      string `json:"cola"`
	Pendiente int64  `json:"pendiente"`
}

// DLQ godoc
// @Summary      Trabajos fallidos por tipo
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} ColaDLQ
// @Router       /v1/jobs/dlq [get]
func (h *JobsHandler) DLQ(c *gin.Context) {
	out := make([]ColaDLQ, 0, len(worker.Tipos()))
	for _, tipo := range worker.Tipos() {
		q, _ := worker.Cola(tipo)
		n, err := worker.DLQLength(c.Request.Context(), h.rdb, q)
		if err != nil {
			responderError(c, apierror.Persistence("leer la cola de fallidos", err))
			return
		}
		out = append(out, ColaDLQ{Tipo: tipo, Cola: q, Pendiente: n})
	}
	c.JSON(http.StatusOK, out)
}

// Reencolar godoc
// @Summary      Reintentar trabajos fallidos
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        tipo path  string true  "Tipo de trabajo"
// @Param        max  query int    false "Máximo a mover (por defecto 100)"
// @Success      200  {object} map[string]int
// @Failure      404  {object} apierror.APIError
// @Router       /v1/jobs/{tipo}/reencolar [post]
func (h *JobsHandler) Reencolar(c *gin.Context) {
	q, ok := worker.Cola(c.Param("tipo"))
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Tipo de trabajo desconocido"))
		return
	}
	max := 100
	if v := c.Query("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, apierror.New("max invalido"))
			return
		}
		max = n
	}
	movidos, err := worker.Reencolar(c.Request.Context(), h.rdb, q, max)
	if err != nil {
		responderError(c, apierror.Persistence("reencolar trabajos", err))
		return
	}
	log.Info().Str("cola", q).Int("movidos", movidos).Msg("dlq: trabajos reencolados")
	c.JSON(http.StatusOK, gin.H{"movidos": movidos})
}
