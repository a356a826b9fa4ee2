package toolrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/toolforge-ai/toolforge/engine/catalog"
	"github.com/toolforge-ai/toolforge/engine/tool"
	"github.com/toolforge-ai/toolforge/engine/tool/uc"
)

// Handlers holds the dependencies shared by the tool routes.
type Handlers struct {
	repo         tool.Repository
	catalog      *catalog.Client
	registrar    uc.Registrar
	metrics      *tool.Metrics
	callbackBase string
}

func NewHandlers(
	repo tool.Repository,
	catalogClient *catalog.Client,
	registrar uc.Registrar,
	metrics *tool.Metrics,
	callbackBase string,
) *Handlers {
	return &Handlers{
		repo:         repo,
		catalog:      catalogClient,
		registrar:    registrar,
		metrics:      metrics,
		callbackBase: callbackBase,
	}
}

func Register(apiBase *gin.RouterGroup, h *Handlers) {
	// Catalog proxy routes
	catalogGroup := apiBase.Group("/catalog")
	{
		// GET /api/v0/catalog/apps
		// Search connectable apps
		catalogGroup.GET("/apps", h.listApps)

		// GET /api/v0/catalog/apps/:app/accounts
		// List connected accounts for an app
		catalogGroup.GET("/apps/:app/accounts", h.listAccounts)

		// GET /api/v0/catalog/apps/:app/actions
		// List actions an app exposes
		catalogGroup.GET("/apps/:app/actions", h.listActions)
	}

	// Stateless authoring helpers
	toolsGroup := apiBase.Group("/tools")
	{
		// POST /api/v0/tools/fields-to-show
		// Progressive-disclosure field list for the current config
		toolsGroup.POST("/fields-to-show", h.fieldsToShow)

		// POST /api/v0/tools/seed-config
		// Initial prop config for a freshly selected action
		toolsGroup.POST("/seed-config", h.seedConfig)

		// POST /api/v0/tools/resolve-options
		// Fetch remote options for one prop
		toolsGroup.POST("/resolve-options", h.resolveOptions)
	}

	// Tool lifecycle routes, scoped by owning agent
	agentTools := apiBase.Group("/agents/:agentID/tools")
	{
		// POST /api/v0/agents/:agentID/tools
		agentTools.POST("", h.createTool)

		// GET /api/v0/agents/:agentID/tools
		agentTools.GET("", h.listTools)

		// GET /api/v0/agents/:agentID/tools/:toolID
		agentTools.GET("/:toolID", h.getTool)

		// PATCH /api/v0/agents/:agentID/tools/:toolID
		agentTools.PATCH("/:toolID", h.updateTool)

		// DELETE /api/v0/agents/:agentID/tools/:toolID
		agentTools.DELETE("/:toolID", h.deleteTool)
	}
}

// RegisterCallback mounts the platform-facing tool-call endpoint. It
// lives outside the versioned API group because its URL is baked into
// every registered tool.
func RegisterCallback(root *gin.RouterGroup, h *Handlers) {
	// POST /api/tool/:toolID/call
	root.POST("/tool/:toolID/call", h.callTool)
}
