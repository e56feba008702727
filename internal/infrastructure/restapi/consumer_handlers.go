package restapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/app/refresh"
	"wallet_sync/internal/domain/entity"
)

// AttachRequest is the body of PUT /consumers/:id.
type AttachRequest struct {
	Address string `json:"address" binding:"required"`
	Network string `json:"network"`
}

// BalanceResponse mirrors the balance part of a consumer view.
type BalanceResponse struct {
	Snapshot  *entity.BalanceSnapshot `json:"snapshot"`
	IsLoading bool                    `json:"isLoading"`
	Error     string                  `json:"error,omitempty"`
}

// TransactionsResponse mirrors the history part of a consumer view.
type TransactionsResponse struct {
	Transactions []entity.CanonicalTransaction `json:"transactions"`
	IsLoading    bool                          `json:"isLoading"`
	Error        string                        `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ConsumerHandler обрабатывает HTTP запросы, связанные с потребителями.
type ConsumerHandler struct {
	registry *refresh.Registry
	logger   port.Logger
}

func NewConsumerHandler(registry *refresh.Registry, l port.Logger) *ConsumerHandler {
	return &ConsumerHandler{registry: registry, logger: l}
}

func (h *ConsumerHandler) ListConsumersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"consumers": h.registry.IDs()})
}

// AttachConsumerHandler points a consumer at a wallet. Changing the wallet resets the consumer.
func (h *ConsumerHandler) AttachConsumerHandler(c *gin.Context) {
	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	network := entity.NetworkMainnet
	if req.Network != "" {
		parsed, err := entity.ParseNetwork(req.Network)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		network = parsed
	}

	o, _ := h.registry.Attach(c.Param("id"), entity.Wallet{Address: req.Address, Network: network})
	c.JSON(http.StatusAccepted, o.View())
}

func (h *ConsumerHandler) DetachConsumerHandler(c *gin.Context) {
	if err := h.registry.Detach(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ConsumerHandler) GetBalanceHandler(c *gin.Context) {
	o, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	view := o.View()
	c.JSON(http.StatusOK, BalanceResponse{
		Snapshot:  view.Snapshot,
		IsLoading: view.BalanceLoading,
		Error:     view.BalanceError,
	})
}

func (h *ConsumerHandler) GetTransactionsHandler(c *gin.Context) {
	o, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	view := o.View()
	c.JSON(http.StatusOK, TransactionsResponse{
		Transactions: view.Transactions,
		IsLoading:    view.TransactionsLoading,
		Error:        view.TransactionsError,
	})
}

// RefreshHandler starts a manual refresh. With wait=true it answers once the refresh is applied.
func (h *ConsumerHandler) RefreshHandler(c *gin.Context) {
	o, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	forced, err := parseBoolQuery(c, "forced")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	wait, err := parseBoolQuery(c, "wait")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	done := o.Refresh(forced)
	if !wait {
		c.JSON(http.StatusAccepted, o.View())
		return
	}

	select {
	case <-done:
		c.JSON(http.StatusOK, o.View())
	case <-c.Request.Context().Done():
		c.Status(http.StatusRequestTimeout)
	}
}

func (h *ConsumerHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, refresh.ErrUnknownConsumer) {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("Consumer request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Errorf("query parameter %s must be a boolean", name)
	}
	return v, nil
}
