package toolrouter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toolforge-ai/toolforge/engine/action"
	"github.com/toolforge-ai/toolforge/engine/compiler"
	"github.com/toolforge-ai/toolforge/engine/core"
	"github.com/toolforge-ai/toolforge/engine/infra/server/router"
	"github.com/toolforge-ai/toolforge/engine/sequencer"
	"github.com/toolforge-ai/toolforge/engine/tool"
	"github.com/toolforge-ai/toolforge/engine/tool/uc"
	"github.com/toolforge-ai/toolforge/engine/visibility"
)

type createToolRequest struct {
	App         string             `json:"app" binding:"required"`
	AccountID   string             `json:"accountId" binding:"required"`
	ActionKey   string             `json:"actionKey" binding:"required"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	PropsConfig *compiler.Document `json:"propsConfig"`
}

func (h *Handlers) createTool(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	var req createToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	create := uc.NewCreate(h.repo, h.catalog, h.registrar, h.metrics, h.callbackBase)
	record, err := create.Execute(c.Request.Context(), &uc.CreateInput{
		ClientID:    clientID,
		AgentID:     c.Param("agentID"),
		App:         req.App,
		AccountID:   req.AccountID,
		ActionKey:   req.ActionKey,
		Label:       req.Label,
		Description: req.Description,
		Config:      req.PropsConfig,
	})
	if err != nil {
		// A registration failure after the local insert leaves an
		// orphaned record; surface it so the caller can retry or
		// delete it.
		if record != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error": router.NewRequestError(
					http.StatusBadGateway, "tool persisted but not registered", err,
				).GetErrorInfo(),
				"data": record,
			})
			return
		}
		router.RespondDomainError(c, err)
		return
	}
	router.RespondCreated(c, "tool created", record)
}

func (h *Handlers) listTools(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	records, err := uc.NewList(h.repo).Execute(c.Request.Context(), &uc.ListInput{
		ClientID: clientID,
		AgentID:  c.Param("agentID"),
	})
	if err != nil {
		router.RespondDomainError(c, err)
		return
	}
	router.RespondOK(c, "tools retrieved", gin.H{"tools": records})
}

func (h *Handlers) getTool(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	record, err := uc.NewGet(h.repo).Execute(c.Request.Context(), &uc.GetInput{
		ID:       core.ID(c.Param("toolID")),
		ClientID: clientID,
		AgentID:  c.Param("agentID"),
	})
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			router.RespondWithError(c, http.StatusNotFound,
				router.NewRequestError(http.StatusNotFound, "tool not found", err))
			return
		}
		router.RespondDomainError(c, err)
		return
	}
	router.RespondOK(c, "tool retrieved", record)
}

type updateToolRequest struct {
	Label       string             `json:"label"`
	Description string             `json:"description"`
	PropsConfig *compiler.Document `json:"propsConfig"`
}

func (h *Handlers) updateTool(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	var req updateToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	update := uc.NewUpdate(h.repo, h.catalog, h.registrar, h.metrics, h.callbackBase)
	out, err := update.Execute(c.Request.Context(), &uc.UpdateInput{
		ID:          core.ID(c.Param("toolID")),
		ClientID:    clientID,
		AgentID:     c.Param("agentID"),
		Label:       req.Label,
		Description: req.Description,
		Config:      req.PropsConfig,
	})
	if err != nil {
		switch {
		case errors.Is(err, tool.ErrToolNotFound):
			router.RespondWithError(c, http.StatusNotFound,
				router.NewRequestError(http.StatusNotFound, "tool not found", err))
		case errors.Is(err, tool.ErrNameConflict):
			router.RespondWithError(c, http.StatusConflict,
				router.NewRequestError(http.StatusConflict, "tool name already taken", err))
		default:
			router.RespondDomainError(c, err)
		}
		return
	}
	data := gin.H{"tool": out.Record}
	if out.RegistrationErr != nil {
		data["registrationError"] = out.RegistrationErr.Error()
	}
	router.RespondOK(c, "tool updated", data)
}

func (h *Handlers) deleteTool(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	del := uc.NewDelete(h.repo, h.registrar, h.metrics)
	err := del.Execute(c.Request.Context(), &uc.DeleteInput{
		ID:       core.ID(c.Param("toolID")),
		ClientID: clientID,
		AgentID:  c.Param("agentID"),
	})
	if err != nil {
		if errors.Is(err, tool.ErrToolNotFound) {
			router.RespondWithError(c, http.StatusNotFound,
				router.NewRequestError(http.StatusNotFound, "tool not found", err))
			return
		}
		router.RespondDomainError(c, err)
		return
	}
	router.RespondOK(c, "tool deleted", gin.H{"id": c.Param("toolID")})
}

type fieldsRequest struct {
	Props       []action.ConfigurableProp `json:"props" binding:"required"`
	PropsConfig compiler.ConfigMap        `json:"propsConfig"`
}

func (h *Handlers) fieldsToShow(c *gin.Context) {
	var req fieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	fields := visibility.FieldsToShow(req.Props, req.PropsConfig)
	router.RespondOK(c, "fields resolved", gin.H{"fields": fields})
}

type seedConfigRequest struct {
	Props []action.ConfigurableProp `json:"props" binding:"required"`
}

func (h *Handlers) seedConfig(c *gin.Context) {
	var req seedConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	cfg := visibility.SeedConfig(req.Props)
	router.RespondOK(c, "config seeded", gin.H{
		"propsConfig": cfg,
		"fields":      visibility.FieldsToShow(req.Props, cfg),
	})
}

type resolveOptionsRequest struct {
	ActionKey   string                    `json:"actionKey" binding:"required"`
	AccountID   string                    `json:"accountId" binding:"required"`
	PropName    string                    `json:"propName"`
	Props       []action.ConfigurableProp `json:"props" binding:"required"`
	PropsConfig compiler.ConfigMap        `json:"propsConfig"`
	SearchQuery string                    `json:"searchQuery"`
}

// resolveOptions runs one sequencer step. With a propName it re-fetches
// that prop (honoring a search query); without one it resolves the next
// pending prop in chain order.
func (h *Handlers) resolveOptions(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	var req resolveOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	if req.PropsConfig == nil {
		req.PropsConfig = compiler.ConfigMap{}
	}
	def := &action.Definition{Key: req.ActionKey, Props: req.Props}
	seq := sequencer.New(h.catalog, def, req.AccountID, clientID)
	var (
		res *sequencer.Resolution
		err error
	)
	if req.PropName != "" {
		seq.SetSearchQuery(req.PropName, req.SearchQuery)
		res, err = seq.ResolveProp(c.Request.Context(), req.PropName, req.PropsConfig)
	} else {
		res, err = seq.ResolveNext(c.Request.Context(), req.PropsConfig)
	}
	if err != nil {
		var cerr *core.CatalogError
		if errors.As(err, &cerr) {
			router.RespondDomainError(c, err)
			return
		}
		router.RespondWithError(c, http.StatusBadRequest,
			router.NewRequestError(http.StatusBadRequest, "cannot resolve options", err))
		return
	}
	data := gin.H{
		"propsConfig": req.PropsConfig,
		"fields":      visibility.FieldsToShow(req.Props, req.PropsConfig),
	}
	if res != nil {
		data["propName"] = res.PropName
		data["options"] = res.Options
		data["autoAssigned"] = res.AutoAssigned
	}
	router.RespondOK(c, "options resolved", data)
}
