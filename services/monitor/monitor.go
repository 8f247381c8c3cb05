package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/nthing-link/farmsync/core/client"
	"github.com/nthing-link/farmsync/core/logger"
	"github.com/nthing-link/farmsync/farm"
	"github.com/nthing-link/farmsync/iot/forward"
	"github.com/nthing-link/farmsync/iot/mqtt"
	"github.com/nthing-link/farmsync/iot/state"
)

// Service holds the configuration for this service
//
// use BROKER_URL="wss://broker.example:8084/mqtt" API_URL="https://api.example"
type Service struct {
	BrokerURL   string `env:"BROKER_URL" description:"the websocket endpoint of the farm MQTT broker"`
	MQTTEnabled bool   `env:"MQTT_ENABLED,default=true" description:"set to false to run without a broker connection"`

	APIURL       string `env:"API_URL,required" description:"the base URL of the farm REST API"`
	FarmID       string `env:"FARM_ID,required" description:"the farm this service monitors"`
	ClientID     string `env:"CLIENT_ID,required" description:"oauth client id of the dashboard application"`
	ClientSecret string `env:"CLIENT_SECRET,required" description:"oauth client secret of the dashboard application"`
	Username     string `env:"USERNAME,required" description:"operator login"`
	Password     string `env:"PASSWORD,required" description:"operator password"`

	KafkaBrokers string `env:"KAFKA_BROKERS" description:"comma-separated Kafka bootstrap addresses, empty disables forwarding"`
	KafkaTopic   string `env:"KAFKA_TOPIC,default=farm-live-updates" description:"the Kafka topic for forwarded updates"`

	ListenAddr  string `env:"LISTEN_ADDR,default=:3000" description:"listen address of the status endpoint"`
	FarmProfile string `env:"FARM_PROFILE" description:"path to an optional farm profile JSON with display names and thresholds"`
	LogLevel    string `env:"LOG_LEVEL,default=info" description:"logrus log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	level, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.InitLogger(level)
	log := logger.ForFarm(service.FarmID)

	var profile *farm.Profile
	if service.FarmProfile != "" {
		data, err := os.ReadFile(service.FarmProfile)
		if err != nil {
			log.WithError(err).Fatal("cannot read farm profile")
		}
		profile, err = farm.ParseProfile(data)
		if err != nil {
			log.WithError(err).Fatal("invalid farm profile")
		}
	}

	restClient := client.NewWithURL(service.APIURL)
	credentials := client.NewCredentials(restClient,
		service.ClientID, service.ClientSecret, service.Username, service.Password)
	token, err := credentials.Token()
	if err != nil {
		log.WithError(err).Fatal("login failed")
	}
	api := client.NewAPI(restClient).WithToken(token)

	tree := state.NewTree()
	if err := loadInventory(api, service.FarmID, tree); err != nil {
		log.WithError(err).Fatal("cannot load gateway inventory")
	}
	log.WithField("gateways", len(tree.Snapshot())).Info("inventory loaded")

	var forwarder *forward.Forwarder
	if service.KafkaBrokers != "" {
		forwarder = forward.New(&forward.Builder{
			Brokers: strings.Split(service.KafkaBrokers, ","),
			Topic:   service.KafkaTopic,
		})
		defer forwarder.Close()
	}

	manager := mqtt.NewManager(&mqtt.Builder{
		BrokerURL: service.BrokerURL,
		Disabled:  !service.MQTTEnabled,
	})
	addHandlers(manager, tree, forwarder, profile, log)
	if err := manager.Start(service.FarmID); err != nil {
		log.WithError(err).Fatal("cannot start broker connection")
	}
	defer manager.Stop()

	router := mux.NewRouter()
	logger.AddRequestID(router)
	addStatusAPI(router, service.FarmID, manager, tree, profile)

	log.WithField("addr", service.ListenAddr).Info("listening")
	go http.ListenAndServe(service.ListenAddr, handlers.CompressHandler(router))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")
}

// loadInventory fetches both gateway classes and seeds the state tree. The
// tree is the baseline the live broker updates are merged into.
func loadInventory(api client.API, farmID string, tree *state.Tree) error {
	sensors, err := api.GetSensorGateways(farmID)
	if err != nil {
		return err
	}
	controllers, err := api.GetControllerGateways(farmID)
	if err != nil {
		return err
	}
	tree.Load(append(sensors, controllers...))
	return nil
}

func addHandlers(manager *mqtt.Manager, tree *state.Tree, forwarder *forward.Forwarder,
	profile *farm.Profile, log *logrus.Entry) {

	offer := func(ev mqtt.Event) {
		if forwarder == nil {
			return
		}
		forwarder.Offer(forward.Record{
			FarmID:     ev.FarmID,
			GatewayID:  ev.GatewayID,
			Class:      ev.Class,
			Action:     ev.Action,
			Payload:    ev.Raw,
			ReceivedAt: time.Now(),
		})
	}

	manager.OnEvent(farm.ClassSensor, mqtt.ActionSensors, func(gatewayID string, ev mqtt.Event) {
		if ev.Sensor == nil {
			return
		}
		applied := tree.ApplySensorUpdate(gatewayID, state.SensorUpdate{
			SensorType:  ev.Sensor.SensorType,
			SensorValue: ev.Sensor.SensorValue,
			ResTime:     ev.Sensor.ResTime,
		})
		if !applied {
			log.WithField("gateway", gatewayID).Debug("sensor update for unknown gateway")
			return
		}
		if profile != nil && profile.Exceeded(farm.NormalizeSensorType(ev.Sensor.SensorType), ev.Sensor.SensorValue) {
			log.WithFields(logrus.Fields{
				"gateway": gatewayID,
				"type":    ev.Sensor.SensorType,
				"value":   ev.Sensor.SensorValue,
			}).Warn("sensor value outside threshold")
		}
		offer(ev)
	})

	manager.OnEvent(farm.ClassController, mqtt.ActionUpdate, func(gatewayID string, ev mqtt.Event) {
		if ev.Controller == nil {
			return
		}
		applied := tree.ApplyControllerUpdate(gatewayID, state.ControllerUpdate{
			Channel:     ev.Controller.Channel,
			SwitchState: ev.Controller.SwitchState,
		})
		if !applied {
			log.WithField("gateway", gatewayID).Debug("controller update for unknown gateway")
			return
		}
		offer(ev)
	})

	manager.OnEvent(farm.ClassController, mqtt.ActionStatus, func(gatewayID string, ev mqtt.Event) {
		if ev.Status == nil {
			return
		}
		tree.ApplyControllerStatus(gatewayID, ev.Status.FirmwareVersion, ev.Status.ResTime)
		offer(ev)
	})

	ack := func(gatewayID string, ev mqtt.Event) {
		log.WithFields(logrus.Fields{
			"gateway": gatewayID,
			"class":   ev.Class,
		}).Debug("command acknowledged")
	}
	manager.OnEvent(farm.ClassSensor, mqtt.ActionAck, ack)
	manager.OnEvent(farm.ClassController, mqtt.ActionAck, ack)
}

type statusResponse struct {
	FarmID    string `json:"farm_id"`
	Connected bool   `json:"connected"`
	Gateways  int    `json:"gateways"`
}

type summaryResponse struct {
	FarmID      string                  `json:"farm_id"`
	Sensors     map[string]summaryEntry `json:"sensors"`
	Controllers state.ControllerSummary `json:"controllers"`
	Gateways    []farm.Gateway          `json:"gateways"`
}

type summaryEntry struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
	Name    string  `json:"name,omitempty"`
}

func addStatusAPI(router *mux.Router, farmID string, manager *mqtt.Manager,
	tree *state.Tree, profile *farm.Profile) {

	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statusResponse{
			FarmID:    farmID,
			Connected: manager.IsConnected(),
			Gateways:  len(tree.Snapshot()),
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		snapshot := tree.Snapshot()
		summary := state.SummarizeGateways(snapshot, farm.NormalizeSensorType)

		sensors := map[string]summaryEntry{}
		for sensorType := range summary {
			entry := summaryEntry{Count: summary[sensorType].Count}
			entry.Average, _ = summary.Average(sensorType)
			entry.Min, _ = summary.Min(sensorType)
			entry.Max, _ = summary.Max(sensorType)
			if profile != nil {
				entry.Name = profile.DisplayName(sensorType)
			}
			sensors[sensorType] = entry
		}

		writeJSON(w, summaryResponse{
			FarmID:      farmID,
			Sensors:     sensors,
			Controllers: state.SummarizeControllers(snapshot),
			Gateways:    snapshot,
		})
	}).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Default().WithError(err).Error("cannot write response")
	}
}
