package mqtt

// Gateway topic segments and actions as used by the farm broker. The topic
// schema is {farm}/{gateway class}/{gateway id}/res/{action}.
const (
	segmentSensorGateway     = "sensor_gateway"
	segmentControllerGateway = "controller_gateway"

	ActionSensors = "sensors"
	ActionAck     = "ack"
	ActionUpdate  = "update"
	ActionStatus  = "status"
)

// TopicsFor returns the five subscription patterns covering one farm: sensor
// data and acknowledgements, controller state updates, controller status and
// controller acknowledgements. The single-level wildcard in the gateway
// position makes one subscription cover every gateway of that class.
func TopicsFor(farmID string) []string {
	return []string{
		farmID + "/" + segmentSensorGateway + "/+/res/" + ActionSensors,
		farmID + "/" + segmentSensorGateway + "/+/res/" + ActionAck,
		farmID + "/" + segmentControllerGateway + "/+/res/" + ActionUpdate,
		farmID + "/" + segmentControllerGateway + "/+/res/" + ActionStatus,
		farmID + "/" + segmentControllerGateway + "/+/res/" + ActionAck,
	}
}
