package engine

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ledgerline/ledgerline/internal/account"
	"github.com/ledgerline/ledgerline/internal/amount"
	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/snapshot"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	processor *Processor
	archive   snapshot.Store
}

// NewHandler builds the engine HTTP handler.
func NewHandler(processor *Processor, archive snapshot.Store) *Handler {
	return &Handler{processor: processor, archive: archive}
}

type transactionRequest struct {
	Type   string `json:"type"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Amount string `json:"amount"`
}

type accountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

func toAccountResponse(row ledger.Snapshot) accountResponse {
	return accountResponse{
		Client:    row.ClientID,
		Available: row.Available.String(),
		Held:      row.Held.String(),
		Total:     row.Total.String(),
		Locked:    row.Locked,
	}
}

// ApplyTransaction applies one transaction and returns the owning account's
// balances afterwards.
func (h *Handler) ApplyTransaction(c *fiber.Ctx) error {
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	kind, err := ledger.ParseKind(strings.TrimSpace(req.Type))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx := ledger.Transaction{Kind: kind, ClientID: req.Client, TxID: req.Tx}
	if kind.HasAmount() {
		amt, err := amount.Parse(strings.TrimSpace(req.Amount))
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		tx.Amount = amt
	}

	if err := h.processor.Apply(c.UserContext(), tx); err != nil {
		switch {
		case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, account.ErrDepositNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
	}

	row, _ := h.processor.Snapshot(tx.ClientID)
	return c.Status(http.StatusOK).JSON(toAccountResponse(row))
}

// IngestFeed processes a whole CSV feed from the request body and reports
// processed and skipped record counts.
func (h *Handler) IngestFeed(c *fiber.Ctx) error {
	report, err := h.processor.Process(c.UserContext(), bytes.NewReader(c.Body()))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(report)
}

// ListAccounts returns a balance row per known client.
func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	rows := h.processor.Snapshots()
	out := make([]accountResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAccountResponse(row))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// GetAccount returns the balance row for one client.
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	clientID, err := strconv.ParseUint(c.Params("clientID"), 10, 16)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid client id")
	}
	row, ok := h.processor.Snapshot(uint16(clientID))
	if !ok {
		return fiber.NewError(http.StatusNotFound, "account not found")
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(row))
}

type archiveRequest struct {
	Label string `json:"label"`
}

// ArchiveSnapshot stores the current snapshot under a caller-chosen label.
func (h *Handler) ArchiveSnapshot(c *fiber.Ctx) error {
	var req archiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return fiber.NewError(http.StatusBadRequest, "label is required")
	}

	rows := h.processor.Snapshots()
	if err := h.archive.Save(c.UserContext(), label, rows); err != nil {
		if errors.Is(err, snapshot.ErrLabelExists) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"label": label, "accounts": len(rows)})
}

// GetArchivedSnapshot returns the rows archived under a label.
func (h *Handler) GetArchivedSnapshot(c *fiber.Ctx) error {
	rows, err := h.archive.Load(c.UserContext(), c.Params("label"))
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]accountResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAccountResponse(row))
	}
	return c.Status(http.StatusOK).JSON(out)
}
