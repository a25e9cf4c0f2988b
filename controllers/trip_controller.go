package controllers

import (
	"errors"
	"net/http"
	"tripcost-api/models"
	"tripcost-api/services"
	"tripcost-api/utils"

	"github.com/gin-gonic/gin"
)

// TripController exposes the trip workflow over HTTP. All state lives in
// the request's session; handlers stay thin and delegate to the workflow.
type TripController struct {
	workflow *services.TripWorkflow
}

func NewTripController(workflow *services.TripWorkflow) *TripController {
	return &TripController{workflow: workflow}
}

// SessionFrom returns the session the auth middleware attached.
func SessionFrom(c *gin.Context) *services.Session {
	return c.MustGet("session").(*services.Session)
}

// GetSession returns the full renderable session state.
func (tc *TripController) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, tc.workflow.State(SessionFrom(c)))
}

// Calculate validates the submitted form and runs one estimation.
func (tc *TripController) Calculate(c *gin.Context) {
	var form models.TripForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	details, err := tc.workflow.Calculate(c.Request.Context(), SessionFrom(c), form)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// Save persists the current result to the remote store.
func (tc *TripController) Save(c *gin.Context) {
	saved, err := tc.workflow.Save(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	utils.SendCreated(c, "Trip saved", saved)
}

// GetTrips returns the cached saved list, most recent first.
func (tc *TripController) GetTrips(c *gin.Context) {
	c.JSON(http.StatusOK, tc.workflow.State(SessionFrom(c)).SavedTrips)
}

// Refresh re-runs the bootstrap against the store.
func (tc *TripController) Refresh(c *gin.Context) {
	session := SessionFrom(c)
	if err := tc.workflow.Bootstrap(c.Request.Context(), session); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, tc.workflow.State(session).SavedTrips)
}

// Delete removes a saved trip, rolling the cached list back if the store
// refuses.
func (tc *TripController) Delete(c *gin.Context) {
	if err := tc.workflow.Delete(c.Request.Context(), SessionFrom(c), c.Param("id")); err != nil {
		respondWorkflowError(c, err)
		return
	}

	utils.SendSuccess(c, "Trip deleted", nil)
}

// Load copies a saved trip back into the form.
func (tc *TripController) Load(c *gin.Context) {
	form, err := tc.workflow.Load(SessionFrom(c), c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

func respondWorkflowError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrEstimationFailed):
		status = http.StatusBadGateway
	case errors.Is(err, models.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	utils.SendError(c, status, err.Error())
}
