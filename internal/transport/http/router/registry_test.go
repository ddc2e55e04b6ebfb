package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type mod struct {
	name     string
	priority int
	order    *[]string
}

func (m mod) MountPublic(g *gin.RouterGroup) {
	*m.order = append(*m.order, "public:"+m.name)
	g.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, m.name) })
}

func (m mod) MountConsole(*gin.RouterGroup) { *m.order = append(*m.order, "console:"+m.name) }

func (m mod) Priority() int { return m.priority }

type consoleOnly struct{ order *[]string }

func (c consoleOnly) MountConsole(*gin.RouterGroup) { *c.order = append(*c.order, "console:only") }

func TestRegistry_Order(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var order []string
	reg := NewRegistry()
	reg.Register(
		consoleOnly{&order},
		mod{name: "late", priority: 200, order: &order},
		mod{name: "early", priority: 10, order: &order},
		"not a module",
	)

	r := gin.New()
	reg.MountAllPublic(r.Group(""))
	reg.MountAllConsole(r.Group(""))

	assert.Equal(t, []string{
		"public:early", "public:late",
		"console:early", "console:only", "console:late",
	}, order)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/early", nil))
	assert.Equal(t, "early", w.Body.String())
}
