package events

import (
	"encoding/json"
	"testing"

	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

func TestHostEvent_Decode(t *testing.T) {
	data := []byte(`{"type":"inventory_changed","ts":1700000000,"items":[{"item_id":5,"quality":"high","count":3},{"item_id":6,"count":1}]}`)

	var ev HostEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ev.Type != TypeInventoryChanged || len(ev.Items) != 2 {
		t.Fatalf("decoded %+v", ev)
	}
	if ev.Items[0].Quality != subject.QualityHigh {
		t.Errorf("Quality = %v, want high", ev.Items[0].Quality)
	}
	if ev.Items[1].Quality != subject.QualityAny {
		t.Errorf("missing quality = %v, want any", ev.Items[1].Quality)
	}
	if err := ev.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestHostEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ev      HostEvent
		wantErr bool
	}{
		{name: "login", ev: HostEvent{Type: TypeLogin}},
		{name: "territory", ev: HostEvent{Type: TypeTerritoryChanged, TerritoryID: 132}},
		{name: "territory without id", ev: HostEvent{Type: TypeTerritoryChanged}, wantErr: true},
		{name: "condition", ev: HostEvent{Type: TypeConditionChanged, Flag: FlagBetweenAreas, Value: true}},
		{name: "condition without flag", ev: HostEvent{Type: TypeConditionChanged}, wantErr: true},
		{name: "currency", ev: HostEvent{Type: TypeCurrencyChanged, ItemID: 28, Count: 5, Max: 2000}},
		{name: "currency without item", ev: HostEvent{Type: TypeCurrencyChanged}, wantErr: true},
		{name: "inventory with zero item", ev: HostEvent{Type: TypeInventoryChanged, Items: []ItemCount{{}}}, wantErr: true},
		{name: "empty type", ev: HostEvent{}, wantErr: true},
		{name: "unknown type", ev: HostEvent{Type: "teleport"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
