package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type InfoResponse struct {
	Message string `json:"message"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

type DeleteResponse struct {
	Detail string `json:"detail"`
}
