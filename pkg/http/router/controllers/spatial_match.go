package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/transitmatch/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

const MAX_REQUEST_BODY_BYTES = 1 << 20

type spatialMatchAPI struct {
	mapMatcherService MapMatcherService
	log               *zap.Logger
}

func New(mapMatcherService MapMatcherService, log *zap.Logger) *spatialMatchAPI {
	return &spatialMatchAPI{
		mapMatcherService: mapMatcherService,
		log:               log,
	}
}

func (api *spatialMatchAPI) Routes(group *helper.RouteGroup) {
	group.POST("/spatialMatches", api.spatialMatches)
	group.GET("/vehicles/:vehicleId", api.getVehicle)
	group.DELETE("/vehicles/:vehicleId", api.resetVehicle)
}

// spatialMatches
//
//	@Summary		match an avl report to the trips of its block
//	@Description	runs the forward scan for a vehicle already matched to the block, otherwise the initial assignment scan over the trips near the report.
//	@Tags			spatialMatch
//	@Accept			application/json
//	@Produce		application/json
//	@Param			body	body		spatialMatchRequest	true	"avl report"
//	@Router			/spatialMatches [post]
//	@Success		200	{object}	spatialMatchesResponse
//	@Failure		400	{object}	errorResponse
//	@Failure		404	{object}	errorResponse
//	@Failure		500	{object}	errorResponse
func (api *spatialMatchAPI) spatialMatches(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request spatialMatchRequest

	r.Body = http.MaxBytesReader(w, r.Body, MAX_REQUEST_BODY_BYTES)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		api.BadRequestResponse(w, r, errors.New("body must be a valid avl report json"))
		return
	}

	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	result, err := api.mapMatcherService.ProcessReport(r.Context(), request.ToGPSPoint(), request.BlockId)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewSpatialMatchesResponse(result)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// getVehicle
//
//	@Summary		matching state of a tracked vehicle
//	@Tags			vehicle
//	@Produce		application/json
//	@Param			vehicleId	path	string	true	"vehicle id"
//	@Router			/vehicles/{vehicleId} [get]
//	@Success		200	{object}	vehicleResponse
//	@Failure		404	{object}	errorResponse
func (api *spatialMatchAPI) getVehicle(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	summary, err := api.mapMatcherService.GetVehicle(p.ByName("vehicleId"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewVehicleResponse(summary)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// resetVehicle
//
//	@Summary		forget the match and report history of a vehicle
//	@Tags			vehicle
//	@Produce		application/json
//	@Param			vehicleId	path	string	true	"vehicle id"
//	@Router			/vehicles/{vehicleId} [delete]
//	@Success		200	{object}	envelope
//	@Failure		404	{object}	errorResponse
func (api *spatialMatchAPI) resetVehicle(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	vehicleId := p.ByName("vehicleId")
	if err := api.mapMatcherService.ResetVehicle(vehicleId); err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"message": "vehicle " + vehicleId + " reset"}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
