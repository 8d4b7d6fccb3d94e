package model

import "github.com/jsphweid/statecomposer/flat"

type PredictRequest struct {
	Window []flat.Vector `json:"window"`
}

type PredictResponse struct {
	Prediction flat.Vector `json:"prediction"`
}

type InfoResponse struct {
	Width      int `json:"width"`
	NTimesteps int `json:"n_timesteps"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
