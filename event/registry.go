package event

import "reflect"

var (
	typeToName    = make(map[EventType]string)
	typeToPayload = make(map[EventType]reflect.Type)
)

// registerType records the display name of an EventType and its payload struct type
// payloadInstance is a pointer to the payload struct, nil for payload-free events
func registerType(name string, et EventType, payloadInstance any) {
	typeToName[et] = name
	if payloadInstance != nil {
		t := reflect.TypeOf(payloadInstance)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		typeToPayload[et] = t
	}
}

func init() {
	registerType("Click", EventClick, &ClickPayload{})
	registerType("Run", EventRun, nil)
	registerType("Reset", EventReset, nil)
	registerType("PositionUpdate", EventPositionUpdate, &PositionUpdatePayload{})
	registerType("Refresh", EventRefresh, nil)
	registerType("Quit", EventQuit, nil)
}

// ValidPayload reports whether p matches the payload registered for et
func ValidPayload(et EventType, p any) bool {
	want, ok := typeToPayload[et]
	if !ok {
		return p == nil
	}
	if p == nil {
		return false
	}
	t := reflect.TypeOf(p)
	return t.Kind() == reflect.Ptr && t.Elem() == want
}
