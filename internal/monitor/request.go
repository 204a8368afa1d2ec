package monitor

type CameraRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type NudgeRequest struct {
	Delta *float64 `json:"delta" binding:"required"`
}

type ReadingRequest struct {
	Score *float64 `json:"score" binding:"required"`
}
