package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/server/models"
	"github.com/dmitrijs2005/didkeeper/internal/server/services"
	"github.com/labstack/echo/v4"
)

type challengeResponse struct {
	Challenge string `json:"challenge"`
	DID       string `json:"did"`
	ExpiresAt int64  `json:"expires_at"`
}

type verifyRequest struct {
	DID       string `json:"did"`
	Challenge string `json:"challenge"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	DID         string `json:"did"`
	ExpiresIn   int64  `json:"expires_in"`
}

type meResponse struct {
	DID           string `json:"did"`
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     int64  `json:"expires_at,omitempty"`
}

type campaignRequest struct {
	DID           string          `json:"did"`
	TransactionID string          `json:"transaction_id"`
	Campaign      json.RawMessage `json:"campaign"`
}

type campaignResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	DID       string `json:"did"`
	CreatedAt string `json:"created_at"`
}

type campaignListResponse struct {
	Campaigns []campaignResponse `json:"campaigns"`
	Total     int                `json:"total"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) challenge(c echo.Context) error {
	ch, err := s.auth.IssueChallenge(c.Request().Context(), c.QueryParam("did"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, challengeResponse{
		Challenge: ch.Value,
		DID:       ch.DID,
		ExpiresAt: ch.ExpiresAt.Unix(),
	})
}

func (s *Server) verify(c echo.Context) error {
	var req verifyRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"did", req.DID},
		{"challenge", req.Challenge},
		{"signature", req.Signature},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Missing fields: "+strings.Join(missing, ", "))
	}

	sess, err := s.auth.Verify(c.Request().Context(), req.DID, req.Challenge, req.Signature)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{
		AccessToken: sess.AccessToken,
		TokenType:   sess.TokenType,
		DID:         sess.DID,
		ExpiresIn:   sess.ExpiresIn,
	})
}

func (s *Server) me(c echo.Context) error {
	claims := sessionClaims(c)
	resp := meResponse{DID: claims.DID, Authenticated: true}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) submitCampaign(c echo.Context) error {
	var req campaignRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	campaign, err := s.campaigns.Submit(c.Request().Context(), sessionClaims(c).DID, services.CampaignRequest{
		DID:           req.DID,
		TransactionID: req.TransactionID,
		Campaign:      req.Campaign,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCampaignResponse(campaign))
}

func (s *Server) listCampaigns(c echo.Context) error {
	list, err := s.campaigns.List(c.Request().Context(), sessionClaims(c).DID)
	if err != nil {
		return err
	}
	resp := campaignListResponse{Campaigns: make([]campaignResponse, 0, len(list)), Total: len(list)}
	for i := range list {
		resp.Campaigns = append(resp.Campaigns, toCampaignResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func toCampaignResponse(c *models.Campaign) campaignResponse {
	return campaignResponse{
		JobID:     c.ID,
		Status:    c.Status,
		DID:       c.DID,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
