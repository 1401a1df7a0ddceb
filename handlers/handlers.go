package handlers

import (
	"errors"
	"net/http"

	"restaurant-api/appstate"
	"restaurant-api/checkout"
	"restaurant-api/feed"
	"restaurant-api/notify"
	"restaurant-api/orders"
	"restaurant-api/repository"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the handlers call into. The database itself is
// reached through config.DB.
type Dependencies struct {
	Repo     *repository.Repository
	State    *appstate.Store
	Checkout *checkout.Service
	Orders   *orders.Service
	Notifier *notify.Dispatcher
	Feed     *feed.Hub
}

var deps Dependencies

// Setup installs the services used by every handler; call before serving
func Setup(d Dependencies) {
	deps = d
}

// internalError responds 500 with the cause in details
func internalError(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
