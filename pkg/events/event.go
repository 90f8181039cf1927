package events

import "strconv"

type Kind string

const (
	KindDeparture                Kind = "departure"
	KindArrival                  Kind = "arrival"
	KindPersonEntersVehicle      Kind = "PersonEntersVehicle"
	KindPersonLeavesVehicle      Kind = "PersonLeavesVehicle"
	KindActivityStart            Kind = "actstart"
	KindActivityEnd              Kind = "actend"
	KindVehicleArrivesAtFacility Kind = "VehicleArrivesAtFacility"
	KindVehicleDepartsAtFacility Kind = "VehicleDepartsAtFacility"
	KindOther                    Kind = "other"
)

var knownKinds = map[string]Kind{
	string(KindDeparture):                KindDeparture,
	string(KindArrival):                  KindArrival,
	string(KindPersonEntersVehicle):      KindPersonEntersVehicle,
	string(KindPersonLeavesVehicle):      KindPersonLeavesVehicle,
	string(KindActivityStart):            KindActivityStart,
	string(KindActivityEnd):              KindActivityEnd,
	string(KindVehicleArrivesAtFacility): KindVehicleArrivesAtFacility,
	string(KindVehicleDepartsAtFacility): KindVehicleDepartsAtFacility,
}

// KindOf maps the raw type attribute of an event element onto the closed Kind set.
func KindOf(eventType string) Kind {
	if kind, exists := knownKinds[eventType]; exists {
		return kind
	}

	return KindOther
}

// Event is a single timestamped record from the simulation log.
// Values are treated as read-only once produced by a Source.
type Event struct {
	Kind       Kind
	Type       string
	Time       float64
	Attributes map[string]string
}

func (e Event) Person() string {
	return e.Attributes["person"]
}

func (e Event) Vehicle() string {
	return e.Attributes["vehicle"]
}

func (e Event) Facility() string {
	return e.Attributes["facility"]
}

func (e Event) ActivityType() string {
	return e.Attributes["actType"]
}

// RoutingMode is the mode the router chose for the whole trip, set on departures
func (e Event) RoutingMode() string {
	return e.Attributes["computationalRoutingMode"]
}

// Float returns a numeric attribute. The second value is false when the
// attribute is absent or not a number.
func (e Event) Float(name string) (float64, bool) {
	value, exists := e.Attributes[name]
	if !exists {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}
