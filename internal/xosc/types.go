package xosc

import "encoding/xml"

// XML mapping for the OpenSCENARIO 1.x subset the checker consumes.
// Anything outside this subset is ignored by encoding/xml.

type document struct {
	XMLName    xml.Name    `xml:"OpenSCENARIO"`
	FileHeader *fileHeader `xml:"FileHeader"`
	Entities   *entitiesEl `xml:"Entities"`
	Storyboard *storyboard `xml:"Storyboard"`
}

type fileHeader struct {
	RevMajor    int    `xml:"revMajor,attr"`
	RevMinor    int    `xml:"revMinor,attr"`
	Author      string `xml:"author,attr"`
	Date        string `xml:"date,attr"`
	Description string `xml:"description,attr"`
}

type entitiesEl struct {
	Objects []scenarioObject `xml:"ScenarioObject"`
}

type scenarioObject struct {
	Name       string      `xml:"name,attr"`
	Vehicle    *vehicle    `xml:"Vehicle"`
	Pedestrian *pedestrian `xml:"Pedestrian"`
	MiscObject *miscObject `xml:"MiscObject"`
}

type vehicle struct {
	Name        string       `xml:"name,attr"`
	Category    string       `xml:"vehicleCategory,attr"`
	BoundingBox *boundingBox `xml:"BoundingBox"`
}

type pedestrian struct {
	Name        string       `xml:"name,attr"`
	Category    string       `xml:"pedestrianCategory,attr"`
	BoundingBox *boundingBox `xml:"BoundingBox"`
}

type miscObject struct {
	Name        string       `xml:"name,attr"`
	Category    string       `xml:"miscObjectCategory,attr"`
	BoundingBox *boundingBox `xml:"BoundingBox"`
}

type boundingBox struct {
	Dimensions dimensions `xml:"Dimensions"`
}

type dimensions struct {
	Width  float64 `xml:"width,attr"`
	Length float64 `xml:"length,attr"`
	Height float64 `xml:"height,attr"`
}

type storyboard struct {
	Init    *initEl `xml:"Init"`
	Stories []story `xml:"Story"`
}

type initEl struct {
	Privates []privateEl `xml:"Actions>Private"`
}

type privateEl struct {
	EntityRef string          `xml:"entityRef,attr"`
	Actions   []privateAction `xml:"PrivateAction"`
}

type privateAction struct {
	Teleport *teleportAction `xml:"TeleportAction"`
}

type teleportAction struct {
	Position position `xml:"Position"`
}

type position struct {
	World *worldPosition `xml:"WorldPosition"`
}

type worldPosition struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	Z float64 `xml:"z,attr"`
	H float64 `xml:"h,attr"`
}

type story struct {
	Name string `xml:"name,attr"`
	Acts []act  `xml:"Act"`
}

type act struct {
	Name   string          `xml:"name,attr"`
	Groups []maneuverGroup `xml:"ManeuverGroup"`
}

type maneuverGroup struct {
	Name      string     `xml:"name,attr"`
	Actors    actors     `xml:"Actors"`
	Maneuvers []maneuver `xml:"Maneuver"`
}

type actors struct {
	Refs []entityRefEl `xml:"EntityRef"`
}

type entityRefEl struct {
	EntityRef string `xml:"entityRef,attr"`
}

type maneuver struct {
	Name   string  `xml:"name,attr"`
	Events []event `xml:"Event"`
}

type event struct {
	Name         string        `xml:"name,attr"`
	StartTrigger *trigger      `xml:"StartTrigger"`
	Actions      []eventAction `xml:"Action"`
}

type trigger struct {
	SimTimes []simTimeCondition `xml:"ConditionGroup>Condition>ByValueCondition>SimulationTimeCondition"`
}

type simTimeCondition struct {
	Value float64 `xml:"value,attr"`
}

type eventAction struct {
	Name    string              `xml:"name,attr"`
	Private *eventPrivateAction `xml:"PrivateAction"`
}

type eventPrivateAction struct {
	Routing *routingAction `xml:"RoutingAction"`
}

type routingAction struct {
	Follow *followTrajectoryAction `xml:"FollowTrajectoryAction"`
}

type followTrajectoryAction struct {
	Trajectory *trajectoryEl `xml:"Trajectory"`
}

type trajectoryEl struct {
	Name     string   `xml:"name,attr"`
	Vertices []vertex `xml:"Shape>Polyline>Vertex"`
}

type vertex struct {
	Time     float64  `xml:"time,attr"`
	Position position `xml:"Position"`
}
