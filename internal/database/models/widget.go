package models

import "encoding/json"

// Display modes supported by the dashboard UI
const (
	DisplayModeCard  = "card"
	DisplayModeTable = "table"
	DisplayModeChart = "chart"
)

// Widget represents one configured dashboard widget: which API it polls, how
// often, and how the response fields map onto the chosen display mode. The
// fetch path only reads APIURL, APIHeaders and CacheTTLSeconds; everything
// else is configuration the UI round-trips.
type Widget struct {
	BaseModel
	Title                  string          `json:"title" gorm:"size:100;not null;uniqueIndex" validate:"required,min=1,max=100"`
	APIURL                 string          `json:"api_url" gorm:"size:500;not null" validate:"required,url,max=500"`
	APIHeaders             json.RawMessage `json:"api_headers,omitempty" gorm:"type:jsonb"`
	RefreshIntervalSeconds int             `json:"refresh_interval_seconds" gorm:"not null;default:60" validate:"min=5,max=86400"`
	CacheTTLSeconds        int             `json:"cache_ttl_seconds" gorm:"not null;default:300" validate:"min=0,max=86400"`
	DisplayMode            string          `json:"display_mode" gorm:"size:20;not null;default:card" validate:"required,oneof=card table chart"`
	FieldMappings          json.RawMessage `json:"field_mappings,omitempty" gorm:"type:jsonb"`
	Position               int             `json:"position" gorm:"not null;default:0"`
}

// TableName returns the table name for Widget
func (Widget) TableName() string {
	return "widgets"
}

// FieldMapping is one entry of a widget's FieldMappings blob
type FieldMapping struct {
	SourcePath  string `json:"source_path"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Format      string `json:"format,omitempty"`
}

// Headers decodes APIHeaders into the map passed to the transport.
// A missing or malformed blob yields no headers.
func (w *Widget) Headers() map[string]string {
	if len(w.APIHeaders) == 0 {
		return nil
	}
	var headers map[string]string
	if err := json.Unmarshal(w.APIHeaders, &headers); err != nil {
		return nil
	}
	return headers
}
