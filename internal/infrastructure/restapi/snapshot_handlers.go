package restapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
)

// SnapshotHandler exposes the balance snapshot journal. A nil journal answers with an empty list.
type SnapshotHandler struct {
	journal port.SnapshotJournal
	logger  port.Logger
}

func NewSnapshotHandler(journal port.SnapshotJournal, l port.Logger) *SnapshotHandler {
	return &SnapshotHandler{journal: journal, logger: l}
}

// GetSnapshotsHandler returns the snapshots journaled after the index given by ?after=N.
// With ?address=...&network=... only that wallet's snapshots are returned.
func (h *SnapshotHandler) GetSnapshotsHandler(c *gin.Context) {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "query parameter after must be a non-negative integer"})
			return
		}
		after = parsed
	}

	address, rawNetwork := c.Query("address"), c.Query("network")
	var wallet *entity.Wallet
	if address != "" || rawNetwork != "" {
		network, err := entity.ParseNetwork(rawNetwork)
		if address == "" || err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "query parameters address and network must be given together"})
			return
		}
		wallet = &entity.Wallet{Address: address, Network: network}
	}

	if h.journal == nil {
		c.JSON(http.StatusOK, gin.H{"snapshots": []entity.SnapshotRecord{}})
		return
	}

	var (
		records []entity.SnapshotRecord
		err     error
	)
	if wallet != nil {
		records, err = h.journal.WalletSnapshotsAfter(*wallet, after)
	} else {
		records, err = h.journal.SnapshotsAfter(after)
	}
	if err != nil {
		h.logger.Error("Failed to read snapshot journal", "after", after, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": records})
}
