package settings

import "fmt"

// ZoneAction is what chat does once a login or zone change has settled.
type ZoneAction int

const (
	ZoneActionNone ZoneAction = iota
	ZoneActionAll
)

var zoneActionNames = map[ZoneAction]string{
	ZoneActionNone: "none",
	ZoneActionAll:  "all",
}

func (a ZoneAction) String() string {
	if name, ok := zoneActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ZoneAction(%d)", int(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a ZoneAction) MarshalText() ([]byte, error) {
	name, ok := zoneActionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown zone action %d", int(a))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ZoneAction) UnmarshalText(text []byte) error {
	for k, v := range zoneActionNames {
		if v == string(text) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown zone action %q", string(text))
}

// UpdateAction is what chat does when tracked quantities change.
type UpdateAction int

const (
	UpdateActionNone UpdateAction = iota
	UpdateActionAll
	UpdateActionNew
)

var updateActionNames = map[UpdateAction]string{
	UpdateActionNone: "none",
	UpdateActionAll:  "all",
	UpdateActionNew:  "new",
}

func (a UpdateAction) String() string {
	if name, ok := updateActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("UpdateAction(%d)", int(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a UpdateAction) MarshalText() ([]byte, error) {
	name, ok := updateActionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown update action %d", int(a))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *UpdateAction) UnmarshalText(text []byte) error {
	for k, v := range updateActionNames {
		if v == string(text) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown update action %q", string(text))
}
