package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/broilr/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStages []domain.Stage
	CurrentStage  domain.Stage
}

// edgeLabels names what the user says to take a transition.
var edgeLabels = map[[2]domain.Stage]string{
	{domain.StageChoice, domain.StageDish}:               "new",
	{domain.StageChoice, domain.StageLoadOrDelete}:       "load",
	{domain.StageChoice, domain.StageDelete}:             "delete",
	{domain.StageDish, domain.StageFollowups}:            "dish name",
	{domain.StageDish, domain.StageChoice}:               "menu",
	{domain.StageFollowups, domain.StageStartCooking}:    "last answer",
	{domain.StageLoadOrDelete, domain.StageDelete}:       "delete",
	{domain.StageLoadOrDelete, domain.StageStartCooking}: "pick",
	{domain.StageDelete, domain.StageChoice}:             "pick",
	{domain.StageStartCooking, domain.StageCooking}:      "yes",
	{domain.StageStartCooking, domain.StageDone}:         "no",
	{domain.StageCooking, domain.StageAskSave}:           "next (new recipe)",
	{domain.StageCooking, domain.StageDone}:              "next (saved recipe)",
	{domain.StageAskSave, domain.StageDone}:              "yes / no",
}

// ResetCommand is drawn as a dotted edge from every stage back to dish.
const ResetCommand = "clear"

// GenerateMermaid produces a Mermaid flowchart of the stage machine.
// It applies semantic styling:
// - Initial stage: ((Circle))
// - Terminal stage: (((Double circle)))
// - Default: [/Parallelogram/] since every other stage waits for input
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(stages []domain.Stage, transitions map[domain.Stage][]domain.Stage, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, stage := range stages {
		id := sanitizeMermaidID(string(stage))

		opener, closer := "[/", "/]"
		switch {
		case stage == domain.StageChoice:
			opener, closer = "((", "))"
		case stage.IsTerminal():
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, stage, closer)

		for _, to := range transitions[stage] {
			arrow := "-->"
			if label, ok := edgeLabels[[2]domain.Stage{stage, to}]; ok {
				arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(label, "\"", "'"))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, sanitizeMermaidID(string(to)))
		}

		if stage != domain.StageDish {
			fmt.Fprintf(&sb, "    %s -. ⚡ %s .-> %s\n", id, ResetCommand, sanitizeMermaidID(string(domain.StageDish)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps the labels readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, stage := range overlay.VisitedStages {
			id := sanitizeMermaidID(string(stage))
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.CurrentStage != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentStage)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_").Replace(id)
}
