// internal/alerts/alert.go
package alerts

import (
	"encoding/json"
	"time"
)

// TimeLayout is how alert times are written in payloads.
const TimeLayout = "2006-01-02 03:04:05 PM"

// Alert codes.
const (
	CodeBatteryDrainingFast = "01"
	CodeBatteryLoadLimit    = "02"
	CodeLowBattery          = "03"
	CodeGridDown            = "04"
	CodeGridUp              = "05"
	CodeInsufficientSolar   = "06"
)

// Alert is one fired rule.
type Alert struct {
	Code    string
	Title   string
	Message string
	Time    time.Time
}

type alertJSON struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// MarshalJSON writes {code,title,message,time}.
func (a Alert) MarshalJSON() ([]byte, error) {
	return json.Marshal(alertJSON{
		Code:    a.Code,
		Title:   a.Title,
		Message: a.Message,
		Time:    a.Time.Format(TimeLayout),
	})
}
