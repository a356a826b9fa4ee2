package toolrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/toolforge-ai/toolforge/engine/infra/server/router"
)

func (h *Handlers) listApps(c *gin.Context) {
	apps, err := h.catalog.ListApps(c.Request.Context(), c.Query("q"))
	if err != nil {
		router.RespondDomainError(c, err)
		return
	}
	router.RespondOK(c, "apps retrieved", gin.H{"apps": apps})
}

func (h *Handlers) listAccounts(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	accounts, err := h.catalog.ListAccounts(c.Request.Context(), c.Param("app"), clientID)
	if err != nil {
		router.RespondDomainError(c, err)
		return
	}
	router.RespondOK(c, "accounts retrieved", gin.H{"accounts": accounts})
}

func (h *Handlers) listActions(c *gin.Context) {
	clientID := router.GetClientID(c)
	if clientID == "" {
		return
	}
	actions, err := h.catalog.ListActions(c.Request.Context(), c.Param("app"), c.Query("account_id"), clientID)
	if err != nil {
		router.RespondDomainError(c, err)
		return
	}
	router.RespondOK(c, "actions retrieved", gin.H{"actions": actions})
}
