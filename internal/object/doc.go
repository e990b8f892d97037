package object

import (
	"encoding/json"
	"fmt"

	"github.com/porchlightgames/titandawn/internal/attr"
)

// Doc is the persisted state of an object. ID and Parent are stored as
// database columns; everything else round-trips through the JSON data
// record.
type Doc struct {
	ID     int64  `json:"-"`
	Parent string `json:"-"`

	Name                string    `json:"name"`
	Aliases             []string  `json:"aliases,omitempty"`
	Description         string    `json:"description,omitempty"`
	InternalDescription string    `json:"internal_description,omitempty"`
	LocationID          int64     `json:"location_id,omitempty"`
	ZoneID              int64     `json:"zone_id,omitempty"`
	ControlledBy        string    `json:"controlled_by,omitempty"`
	DestinationID       int64     `json:"destination_id,omitempty"`
	Attributes          *attr.Map `json:"attributes,omitempty"`
}

// MarshalData encodes the JSON portion of the doc.
func (d *Doc) MarshalData() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode object #%d: %w", d.ID, err)
	}
	return data, nil
}

// UnmarshalDoc decodes a persisted object record back into a Doc.
func UnmarshalDoc(id int64, parent string, data []byte) (Doc, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Doc{}, fmt.Errorf("failed to decode object #%d: %w", id, err)
	}
	doc.ID = id
	doc.Parent = parent
	if doc.Attributes == nil {
		doc.Attributes = attr.NewMap()
	}
	return doc, nil
}
