package docgen

import (
	"encoding/xml"
	"strings"

	"github.com/google/uuid"
)

// Minimal BPMN 2.0 document structure. Only the elements the diagram editor
// needs to seed a new diagram are emitted: a process with owner/manager
// lanes, a start event derived from the trigger, a single task named after
// the process, an end event, and the connecting sequence flows. The editor
// takes over layout and further modelling from there.

type bpmnDefinitions struct {
	XMLName         xml.Name `xml:"bpmn:definitions"`
	XMLNSBPMN       string   `xml:"xmlns:bpmn,attr"`
	XMLNSBPMNDI     string   `xml:"xmlns:bpmndi,attr"`
	ID              string   `xml:"id,attr"`
	TargetNamespace string   `xml:"targetNamespace,attr"`
	Process         bpmnProcess
}

type bpmnProcess struct {
	XMLName      xml.Name `xml:"bpmn:process"`
	ID           string   `xml:"id,attr"`
	Name         string   `xml:"name,attr,omitempty"`
	IsExecutable bool     `xml:"isExecutable,attr"`
	Doc          *bpmnDocumentation
	LaneSet      *bpmnLaneSet
	StartEvent   bpmnFlowNode `xml:"bpmn:startEvent"`
	Task         bpmnFlowNode `xml:"bpmn:task"`
	EndEvent     bpmnFlowNode `xml:"bpmn:endEvent"`
	Flows        []bpmnSequenceFlow
}

type bpmnDocumentation struct {
	XMLName xml.Name `xml:"bpmn:documentation"`
	Text    string   `xml:",chardata"`
}

type bpmnLaneSet struct {
	XMLName xml.Name `xml:"bpmn:laneSet"`
	ID      string   `xml:"id,attr"`
	Lanes   []bpmnLane
}

type bpmnLane struct {
	XMLName      xml.Name `xml:"bpmn:lane"`
	ID           string   `xml:"id,attr"`
	Name         string   `xml:"name,attr"`
	FlowNodeRefs []string `xml:"bpmn:flowNodeRef"`
}

type bpmnFlowNode struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
}

type bpmnSequenceFlow struct {
	XMLName   xml.Name `xml:"bpmn:sequenceFlow"`
	ID        string   `xml:"id,attr"`
	SourceRef string   `xml:"sourceRef,attr"`
	TargetRef string   `xml:"targetRef,attr"`
}

// GenerateBPMN renders the document metadata as a minimal BPMN 2.0 diagram.
func GenerateBPMN(doc Document) (string, error) {
	suffix := shortID()

	name := doc.Title
	if doc.Process != nil && doc.Process.Name != "" {
		name = doc.Process.Name
	}

	startName := "Start"
	if doc.Trigger != nil {
		switch {
		case doc.Trigger.Description != "":
			startName = doc.Trigger.Description
		case doc.Trigger.Type != "":
			startName = doc.Trigger.Type
		}
	}

	taskName := name
	if taskName == "" {
		taskName = "Process"
	}

	start := bpmnFlowNode{ID: "StartEvent_" + suffix, Name: startName}
	task := bpmnFlowNode{ID: "Task_" + suffix, Name: taskName}
	end := bpmnFlowNode{ID: "EndEvent_" + suffix, Name: "End"}

	proc := bpmnProcess{
		ID:           "Process_" + suffix,
		Name:         name,
		IsExecutable: false,
		StartEvent:   start,
		Task:         task,
		EndEvent:     end,
		Flows: []bpmnSequenceFlow{
			{ID: "Flow_" + suffix + "_1", SourceRef: start.ID, TargetRef: task.ID},
			{ID: "Flow_" + suffix + "_2", SourceRef: task.ID, TargetRef: end.ID},
		},
	}

	if doc.Process != nil && doc.Process.Description != "" {
		proc.Doc = &bpmnDocumentation{Text: doc.Process.Description}
	}

	// One lane per named role. The owner lane carries the flow nodes; the
	// manager lane exists for the editor to assign work to.
	if doc.Process != nil && (doc.Process.Owner != "" || doc.Process.Manager != "") {
		ls := &bpmnLaneSet{ID: "LaneSet_" + suffix}
		if doc.Process.Owner != "" {
			ls.Lanes = append(ls.Lanes, bpmnLane{
				ID:           "Lane_" + suffix + "_owner",
				Name:         doc.Process.Owner,
				FlowNodeRefs: []string{start.ID, task.ID, end.ID},
			})
		}
		if doc.Process.Manager != "" {
			ls.Lanes = append(ls.Lanes, bpmnLane{
				ID:   "Lane_" + suffix + "_manager",
				Name: doc.Process.Manager,
			})
		}
		proc.LaneSet = ls
	}

	defs := bpmnDefinitions{
		XMLNSBPMN:       "http://www.omg.org/spec/BPMN/20100524/MODEL",
		XMLNSBPMNDI:     "http://www.omg.org/spec/BPMN/20100524/DI",
		ID:              "Definitions_" + suffix,
		TargetNamespace: "http://bpmn.io/schema/bpmn",
		Process:         proc,
	}

	out, err := xml.MarshalIndent(defs, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out), nil
}

// shortID returns an 8-char id suffix. BPMN element ids must start with a
// letter, which the callers guarantee by prefixing.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
