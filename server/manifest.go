package server

import (
	"net/http"

	"github.com/existflow/neocount/internal/logger"
	"github.com/labstack/echo/v4"
)

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

var manifest = webManifest{
	Name:            "NeoCount",
	ShortName:       "NeoCount",
	Description:     "Brutally honest countdowns",
	StartURL:        "/",
	Display:         "standalone",
	BackgroundColor: "#f3f0e8",
	ThemeColor:      "#ffde59",
	Icons: []manifestIcon{
		{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
		{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png"},
	},
}

func (s *Server) handleManifest(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/manifest+json")
	return c.JSON(http.StatusOK, manifest)
}

type installOutcomeRequest struct {
	Outcome string `json:"outcome"`
}

// handleInstallOutcome records how the user answered the install prompt
func (s *Server) handleInstallOutcome(c echo.Context) error {
	var req installOutcomeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Outcome != "accepted" && req.Outcome != "dismissed" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "outcome must be accepted or dismissed"})
	}

	s.mu.Lock()
	s.installs[req.Outcome]++
	s.mu.Unlock()

	logger.Info("Install prompt answered", logger.F("outcome", req.Outcome))
	return c.NoContent(http.StatusNoContent)
}

// InstallOutcomes returns the install prompt answers seen since start
func (s *Server) InstallOutcomes() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.installs))
	for k, v := range s.installs {
		out[k] = v
	}
	return out
}
