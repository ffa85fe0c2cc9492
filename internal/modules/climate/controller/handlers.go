package controller

import (
	"bytes"
	"errors"
	"net/http"

	"surfsup-server/internal/logging"
	"surfsup-server/internal/modules/climate/service"
	"surfsup-server/internal/utils"
)

func (c *climateControllerImpl) handleWelcome(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	logger.Info("request received", "route", "welcome")

	var buf bytes.Buffer
	if err := c.renderWelcome(&buf, c.welcome); err != nil {
		logger.Error("welcome template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteText(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	logger.Info("request received", "route", "precipitation")

	readings, err := c.service.Precipitation(r.Context())
	if err != nil {
		logger.Error("precipitation failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, formatPrecipitation(readings))
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	logger.Info("request received", "route", "stations")

	stations, err := c.service.Stations(r.Context())
	if err != nil {
		logger.Error("stations failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, formatStations(stations))
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	logger.Info("request received", "route", "tobs")

	readings, err := c.service.RecentStationTemperatures(r.Context())
	if err != nil {
		logger.Error("station temperatures failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperatures")
		return
	}
	utils.WriteJSON(w, http.StatusOK, formatTemperatures(readings))
}

func (c *climateControllerImpl) handleTemperatureFrom(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).Info("request received", "route", "start")
	c.writeTemperatureStats(w, r, r.PathValue("start"), "")
}

func (c *climateControllerImpl) handleTemperatureRange(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).Info("request received", "route", "start_end")
	c.writeTemperatureStats(w, r, r.PathValue("start"), r.PathValue("end"))
}

func (c *climateControllerImpl) writeTemperatureStats(w http.ResponseWriter, r *http.Request, start, end string) {
	stats, err := c.service.TemperatureStats(r.Context(), start, end)
	if errors.Is(err, service.ErrStartRequired) {
		utils.WriteError(w, http.StatusBadRequest, "missing start date")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("temperature stats failed", "start", start, "end", end, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature statistics")
		return
	}
	utils.WriteJSON(w, http.StatusOK, formatTemperatureStats(stats))
}
