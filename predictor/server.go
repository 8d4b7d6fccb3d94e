package predictor

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/model"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

// NewHandler serves p over HTTP:
//
//	POST /predict  {"window": [[...], ...]} -> {"prediction": [...]}
//	GET  /info     {"width": 12, "n_timesteps": 32}
func NewHandler(p Predictor, nTimesteps int) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/predict", handlePredict(p)).Methods("POST")
	router.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.InfoResponse{Width: int(p.Width()), NTimesteps: nTimesteps})
	}).Methods("GET")
	return cors.Default().Handler(router)
}

func handlePredict(p Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Could not unmarshal request body: " + err.Error()})
			return
		}

		prediction, err := p.Predict(r.Context(), input.Window)
		switch {
		case errors.Is(err, flat.ErrShapeMismatch):
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		case err != nil:
			log.WithField("function", "handlePredict").WithError(err).Error("Prediction failed")
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, model.PredictResponse{Prediction: prediction})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
