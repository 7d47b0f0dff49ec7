// Package esdl declares the reflective schema of the Energy System
// Description Language subset the map editor works with, plus constructors
// for its instances.
package esdl

import (
	"github.com/google/uuid"

	"github.com/mapeditor/esdlcore/model"
)

// Asset states.
const (
	StateEnabled  = "ENABLED"
	StateDisabled = "DISABLED"
	StateOptional = "OPTIONAL"
)

// Point is a WGS84 coordinate. Geometries are stored as plain attribute
// values.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Line is an ordered polyline geometry.
type Line struct {
	Points []Point `json:"points"`
}

var (
	Item            *model.Class
	EnergySystem    *model.Class
	Instance        *model.Class
	Area            *model.Class
	Asset           *model.Class
	Producer        *model.Class
	Consumer        *model.Class
	Pipe            *model.Class
	Joint           *model.Class
	Port            *model.Class
	InPort          *model.Class
	OutPort         *model.Class
	Carrier         *model.Class
	ControlStrategy *model.Class
)

func init() {
	Item = model.NewClass("Item")
	Item.Abstract = true
	Item.AddAttribute("id", false, nil)
	Item.AddAttribute("name", false, nil)
	Item.AddAttribute("description", false, nil)

	EnergySystem = model.NewClass("EnergySystem", Item)
	Instance = model.NewClass("Instance", Item)
	Area = model.NewClass("Area", Item)
	Asset = model.NewClass("Asset", Item)
	Asset.Abstract = true
	Producer = model.NewClass("Producer", Asset)
	Consumer = model.NewClass("Consumer", Asset)
	Pipe = model.NewClass("Pipe", Asset)
	Joint = model.NewClass("Joint", Asset)
	Port = model.NewClass("Port", Item)
	Port.Abstract = true
	InPort = model.NewClass("InPort", Port)
	OutPort = model.NewClass("OutPort", Port)
	Carrier = model.NewClass("Carrier", Item)
	ControlStrategy = model.NewClass("ControlStrategy", Item)

	EnergySystem.AddAttribute("version", false, "1")
	EnergySystem.AddReference("instance", Instance, true, true)
	EnergySystem.AddReference("carriers", Carrier, true, true)
	EnergySystem.AddReference("controlStrategies", ControlStrategy, true, true)

	Instance.AddReference("area", Area, false, true)

	subAreas := Area.AddReference("area", Area, true, true)
	parentArea := Area.AddReference("containingArea", Area, false, false)
	model.SetOpposites(subAreas, parentArea)
	assets := Area.AddReference("asset", Asset, true, true)
	Area.AddAttribute("scope", false, "UNDEFINED")

	assetArea := Asset.AddReference("area", Area, false, false)
	model.SetOpposites(assets, assetArea)
	Asset.AddAttribute("state", false, StateEnabled)
	Asset.AddAttribute("power", false, 0.0)
	Asset.AddAttribute("aggregated", false, false)
	Asset.AddAttribute("geometry", false, nil)
	Asset.AddAttribute("tags", true, nil)
	ports := Asset.AddReference("port", Port, true, true)
	strategy := Asset.AddReference("controlStrategy", ControlStrategy, false, false)

	Pipe.AddAttribute("length", false, 0.0)
	Pipe.AddAttribute("innerDiameter", false, 0.0)
	Consumer.AddAttribute("profile", true, nil)

	energyAsset := Port.AddReference("energyasset", Asset, false, false)
	model.SetOpposites(ports, energyAsset)
	Port.AddReference("carrier", Carrier, false, false)
	Port.AddAttribute("maxPower", false, 0.0)

	inConnected := InPort.AddReference("connectedTo", OutPort, true, false)
	outConnected := OutPort.AddReference("connectedTo", InPort, true, false)
	model.SetOpposites(inConnected, outConnected)

	Carrier.AddAttribute("cost", false, 0.0)

	strategyAsset := ControlStrategy.AddReference("energyAsset", Asset, false, false)
	model.SetOpposites(strategy, strategyAsset)
}

// New creates an instance of c with a fresh id and the given name.
func New(c *model.Class, name string) *model.Object {
	obj := model.New(c)
	_ = obj.Set("id", uuid.NewString())
	if name != "" {
		_ = obj.Set("name", name)
	}
	return obj
}

// NewArea creates an Area.
func NewArea(name string) *model.Object { return New(Area, name) }

// NewPipe creates a Pipe.
func NewPipe(name string) *model.Object { return New(Pipe, name) }

// NewProducer creates a Producer.
func NewProducer(name string) *model.Object { return New(Producer, name) }

// NewConsumer creates a Consumer.
func NewConsumer(name string) *model.Object { return New(Consumer, name) }

// NewInPort creates an InPort.
func NewInPort(name string) *model.Object { return New(InPort, name) }

// NewOutPort creates an OutPort.
func NewOutPort(name string) *model.Object { return New(OutPort, name) }

// NewCarrier creates a Carrier.
func NewCarrier(name string) *model.Object { return New(Carrier, name) }

// ClassByName resolves one of the schema classes by name.
func ClassByName(name string) (*model.Class, bool) {
	for _, c := range []*model.Class{
		EnergySystem, Instance, Area, Producer, Consumer, Pipe, Joint,
		InPort, OutPort, Carrier, ControlStrategy,
	} {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
