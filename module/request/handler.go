package request

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anandbobba/Innovex-Service/module/request/model"
	"github.com/anandbobba/Innovex-Service/service/ws"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
	"go.mongodb.org/mongo-driver/bson"
)

// Store is what the handlers need from persistence; the mongo repo satisfies
// it, tests use an in-memory fake.
type Store interface {
	List(ctx context.Context) ([]model.Request, error)
	Insert(ctx context.Context, req *model.Request) error
	Update(ctx context.Context, id string, set bson.M) (*model.Request, error)
	Delete(ctx context.Context, id string) (*model.Request, error)
}

// Broadcaster is the slice of the hub the handlers use.
type Broadcaster interface {
	BroadcastAll(event string, payload interface{})
	BroadcastRoom(room, event string, payload interface{})
}

type Handler struct {
	store Store
	hub   Broadcaster
}

func NewHandler(store Store, hub Broadcaster) *Handler {
	return &Handler{store: store, hub: hub}
}

func fail(c *gin.Context, err error) {
	code, msg := errs.CodeOf(err)
	c.JSON(code, gin.H{"error": msg})
}

func (h *Handler) HandleList(c *gin.Context) {
	docs, err := h.store.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

type createBody struct {
	Requester string `json:"requester"`
	Category  string `json:"category"`
	Details   string `json:"details"`
	Location  string `json:"location"`
	Quantity  string `json:"quantity"`
	TeamID    string `json:"teamId"`
	SpocID    string `json:"spocId"`
}

func (h *Handler) HandleCreate(c *gin.Context) {
	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, errs.ErrValidation.WithDetail(err.Error()))
		return
	}
	if strings.TrimSpace(body.Location) == "" {
		fail(c, errs.ErrValidation.WithDetail("location is required"))
		return
	}

	doc := &model.Request{
		Requester: body.Requester,
		Category:  body.Category,
		Details:   body.Details,
		Location:  body.Location,
		Quantity:  body.Quantity,
		TeamID:    body.TeamID,
		SpocID:    body.SpocID,
		Status:    model.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Insert(c.Request.Context(), doc); err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastAll(ws.EventRequestCreated, doc)
	if doc.SpocID != "" {
		h.hub.BroadcastRoom(ws.RoomSpoc(doc.SpocID), ws.EventRequestCreatedForSpoc, doc)
	}
	if doc.TeamID != "" {
		h.hub.BroadcastRoom(ws.RoomTeam(doc.TeamID), ws.EventRequestCreatedForTeam, doc)
	}

	c.JSON(http.StatusCreated, doc)
}

// updateBody holds the patchable fields; nil means "not sent". Unknown keys
// in the body are ignored, so id/createdAt cannot be overwritten.
type updateBody struct {
	Requester *string `mapstructure:"requester"`
	Category  *string `mapstructure:"category"`
	Details   *string `mapstructure:"details"`
	Location  *string `mapstructure:"location"`
	Quantity  *string `mapstructure:"quantity"`
	TeamID    *string `mapstructure:"teamId"`
	SpocID    *string `mapstructure:"spocId"`
	Status    *string `mapstructure:"status"`
}

func (b *updateBody) toSet() bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("requester", b.Requester)
	put("category", b.Category)
	put("details", b.Details)
	put("location", b.Location)
	put("quantity", b.Quantity)
	put("team_id", b.TeamID)
	put("spoc_id", b.SpocID)
	put("status", b.Status)
	return set
}

func (h *Handler) HandleUpdate(c *gin.Context) {
	id := c.Param("id")

	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, errs.ErrValidation.WithDetail(err.Error()))
		return
	}
	var body updateBody
	if err := mapstructure.Decode(raw, &body); err != nil {
		fail(c, errs.ErrValidation.WithDetail(err.Error()))
		return
	}
	set := body.toSet()
	if len(set) == 0 {
		fail(c, errs.ErrValidation.WithDetail("no updatable fields in body"))
		return
	}
	if body.Location != nil && strings.TrimSpace(*body.Location) == "" {
		fail(c, errs.ErrValidation.WithDetail("location cannot be empty"))
		return
	}

	doc, err := h.store.Update(c.Request.Context(), id, set)
	if err != nil {
		fail(c, err)
		return
	}

	h.hub.BroadcastAll(ws.EventRequestUpdated, doc)
	if doc.SpocID != "" {
		h.hub.BroadcastRoom(ws.RoomSpoc(doc.SpocID), ws.EventRequestUpdated, doc)
	}
	if doc.TeamID != "" {
		h.hub.BroadcastRoom(ws.RoomTeam(doc.TeamID), ws.EventRequestUpdated, doc)
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) HandleDelete(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	notice := gin.H{"id": id}
	h.hub.BroadcastAll(ws.EventRequestDeleted, notice)
	if doc.SpocID != "" {
		h.hub.BroadcastRoom(ws.RoomSpoc(doc.SpocID), ws.EventRequestDeleted, notice)
	}
	if doc.TeamID != "" {
		h.hub.BroadcastRoom(ws.RoomTeam(doc.TeamID), ws.EventRequestDeleted, notice)
	}

	c.Status(http.StatusNoContent)
}
