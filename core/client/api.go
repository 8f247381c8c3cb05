package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/nthing-link/farmsync/farm"
)

// API wraps the farm REST endpoints the monitoring service needs: the
// inventory fetch establishing the state baseline, device control, and the
// paged log retrieval.
type API struct {
	client Client
}

// NewAPI returns an API on top of the given client.
func NewAPI(c Client) API {
	return API{client: c}
}

// WithToken returns an API whose requests carry the bearer token.
func (a API) WithToken(token string) API {
	a.client = a.client.WithToken(token)
	return a
}

type sitesResponse struct {
	Site []farm.Site `json:"site"`
}

type gatewaysResponse struct {
	Gateways []farm.Gateway `json:"gateways"`
}

// GetSites returns the sites of a farm.
func (a API) GetSites(farmID string) ([]farm.Site, error) {
	response := sitesResponse{}
	_, err := a.client.WithFarm(farmID).RawGet("/farm/"+farmID+"/site/getSite", &response)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch sites: %w", err)
	}
	return response.Site, nil
}

// GetSensorGateways returns the sensor gateway inventory of a farm,
// including the device lists.
func (a API) GetSensorGateways(farmID string) ([]farm.Gateway, error) {
	response := gatewaysResponse{}
	_, err := a.client.WithFarm(farmID).RawGet("/farm/"+farmID+"/gateway/getSensorGateway", &response)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch sensor gateways: %w", err)
	}
	return response.Gateways, nil
}

// GetControllerGateways returns the controller gateway inventory of a farm.
func (a API) GetControllerGateways(farmID string) ([]farm.Gateway, error) {
	response := gatewaysResponse{}
	_, err := a.client.WithFarm(farmID).RawGet("/farm/"+farmID+"/gateway/getControllerGateway", &response)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch controller gateways: %w", err)
	}
	return response.Gateways, nil
}

// GetGateway returns one gateway by its identifier.
func (a API) GetGateway(farmID, gatewayID string) (farm.Gateway, error) {
	response := struct {
		Gateway farm.Gateway `json:"gateway"`
	}{}
	_, err := a.client.WithFarm(farmID).RawGet(
		"/farm/"+farmID+"/gateway/getGatewayByGatewayId?gid="+url.QueryEscape(gatewayID), &response)
	if err != nil {
		return farm.Gateway{}, fmt.Errorf("cannot fetch gateway %s: %w", gatewayID, err)
	}
	return response.Gateway, nil
}

// ControlCommand is the common parameter set of the device control
// endpoints. The API speaks url-encoded forms here, not JSON.
type ControlCommand struct {
	GID     string
	DID     string
	Num     int
	Command bool
	DType   string
}

func (cmd ControlCommand) values() url.Values {
	values := url.Values{}
	values.Set("gid", cmd.GID)
	values.Set("did", cmd.DID)
	values.Set("num", strconv.Itoa(cmd.Num))
	values.Set("command", strconv.FormatBool(cmd.Command))
	if cmd.DType != "" {
		values.Set("dtype", cmd.DType)
	}
	return values
}

func (a API) controlDevice(farmID, endpoint string, values url.Values) error {
	result := map[string]interface{}{}
	_, err := a.client.WithFarm(farmID).RawPostForm("/farm/"+farmID+"/device/"+endpoint, values, &result)
	if err != nil {
		return fmt.Errorf("device control %s failed: %w", endpoint, err)
	}
	return nil
}

// LEDControl switches an LED channel.
func (a API) LEDControl(farmID string, cmd ControlCommand) error {
	return a.controlDevice(farmID, "ledControl", cmd.values())
}

// PumpControl switches a pump channel.
func (a API) PumpControl(farmID string, cmd ControlCommand) error {
	return a.controlDevice(farmID, "pumpControl", cmd.values())
}

// ACControl switches an air conditioner. A target temperature can be passed
// along with the command.
func (a API) ACControl(farmID string, cmd ControlCommand, targetTemp *float64) error {
	values := cmd.values()
	if targetTemp != nil {
		values.Set("temp", strconv.FormatFloat(*targetTemp, 'f', -1, 64))
	}
	return a.controlDevice(farmID, "acControl", values)
}

// SwitchControl switches a generic switch channel.
func (a API) SwitchControl(farmID string, cmd ControlCommand) error {
	return a.controlDevice(farmID, "switchControl", cmd.values())
}

// SetAutoMode toggles a controller channel between automatic and manual
// operation.
func (a API) SetAutoMode(farmID, gatewayID, deviceID string, num int, auto bool) error {
	values := url.Values{}
	values.Set("gid", gatewayID)
	values.Set("did", deviceID)
	values.Set("num", strconv.Itoa(num))
	values.Set("auto", strconv.FormatBool(auto))
	return a.controlDevice(farmID, "autoControl", values)
}

type recipesResponse struct {
	Recipes []farm.Recipe `json:"recipes"`
}

// GetRecipes returns the cultivation recipe templates of a farm.
func (a API) GetRecipes(farmID string) ([]farm.Recipe, error) {
	response := recipesResponse{}
	_, err := a.client.WithFarm(farmID).RawGet("/recipe-api/recipe/getRecipes", &response)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch recipes: %w", err)
	}
	return response.Recipes, nil
}

// DeleteRecipe removes a recipe template.
func (a API) DeleteRecipe(farmID, recipeID string) error {
	values := url.Values{}
	values.Set("recipeId", recipeID)
	result := map[string]interface{}{}
	_, err := a.client.WithFarm(farmID).RawPostForm("/recipe-api/recipe/deleteRecipeByRecipeId", values, &result)
	if err != nil {
		return fmt.Errorf("cannot delete recipe %s: %w", recipeID, err)
	}
	return nil
}

// SensorLog is one row of the sensor history kept by the log API.
type SensorLog struct {
	GID        string  `json:"gid"`
	DID        string  `json:"did"`
	SensorType string  `json:"sensor_type"`
	SensorVal  float64 `json:"sensor_val"`
	ResTime    int64   `json:"res_time"`
}

// SensorLogPage is one page of sensor history.
type SensorLogPage struct {
	Logs       []SensorLog `json:"logs"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

// GetSensorLogs returns one page of sensor history for a gateway within the
// given time range (epoch seconds).
func (a API) GetSensorLogs(farmID, gatewayID string, from, to int64, page int) (SensorLogPage, error) {
	response := SensorLogPage{}
	path := fmt.Sprintf("/log-api/sensor/log/page?gid=%s&from=%d&to=%d&page=%d",
		url.QueryEscape(gatewayID), from, to, page)
	_, err := a.client.WithFarm(farmID).RawGet(path, &response)
	if err != nil {
		return SensorLogPage{}, fmt.Errorf("cannot fetch sensor logs: %w", err)
	}
	return response, nil
}
