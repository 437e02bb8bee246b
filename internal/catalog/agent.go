package catalog

import (
	"fmt"
	"strings"

	"github.com/tiendactl/tiendactl/internal/api"
	"github.com/tiendactl/tiendactl/internal/resource"
)

// AgentTools are the capability flags of a storefront AI agent.
type AgentTools struct {
	WebSearch     bool
	CatalogLookup bool
	OrderLookup   bool
}

// Agent configures the storefront's AI assistant.
type Agent struct {
	ID          *int64
	Name        string
	Model       string
	Prompt      string
	Temperature float64
	Tools       AgentTools
	Active      bool
}

func agentSpec() resource.Spec[Agent] {
	return resource.Spec[Agent]{
		Name:         "agent",
		Endpoint:     "agentes",
		FilterFields: []string{"search"},
		Defaults: func() Agent {
			return Agent{Temperature: 0.7, Active: true}
		},
		Decode: decodeAgent,
		Encode: encodeAgent,
		ID:     func(a Agent) *int64 { return a.ID },
	}
}

func decodeAgent(r api.Record) Agent {
	agent := Agent{
		ID:          r.ID(),
		Name:        r.String("name"),
		Model:       r.String("model", "modelo"),
		Prompt:      r.String("prompt"),
		Temperature: r.Float(0.7, "temperature", "temperatura"),
		Active:      r.Bool(true, "active", "is_active", "isActive"),
	}
	if tools := r.Sub("tools", "herramientas"); tools != nil {
		agent.Tools = AgentTools{
			WebSearch:     tools.Bool(false, "web_search", "webSearch"),
			CatalogLookup: tools.Bool(false, "catalog_lookup", "catalogLookup"),
			OrderLookup:   tools.Bool(false, "order_lookup", "orderLookup"),
		}
	}
	return agent
}

func encodeAgent(a Agent) api.Payload {
	return api.Payload{Fields: map[string]any{
		"name":        a.Name,
		"model":       a.Model,
		"prompt":      a.Prompt,
		"temperature": a.Temperature,
		"active":      a.Active,
		"tools": map[string]any{
			"web_search":     a.Tools.WebSearch,
			"catalog_lookup": a.Tools.CatalogLookup,
			"order_lookup":   a.Tools.OrderLookup,
		},
	}}
}

var agentMeta = Meta{
	Title: "Agents",
	Columns: []Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 22},
		{Title: "Model", Width: 22},
		{Title: "Temp", Width: 6},
		{Title: "Active", Width: 8},
	},
	Filters: []FormField{
		{Key: "search", Label: "Search", Kind: FieldText},
	},
	Form: []FormField{
		{Key: "name", Label: "Name", Kind: FieldText},
		{Key: "model", Label: "Model", Kind: FieldText},
		{Key: "prompt", Label: "Prompt", Kind: FieldText},
		{Key: "temperature", Label: "Temperature", Kind: FieldNumber},
		{Key: "web_search", Label: "Web search", Kind: FieldToggle},
		{Key: "catalog_lookup", Label: "Catalog lookup", Kind: FieldToggle},
		{Key: "order_lookup", Label: "Order lookup", Kind: FieldToggle},
		{Key: "active", Label: "Active", Kind: FieldToggle},
	},
}

// NewAgentResource binds the agent entity.
func NewAgentResource(deps Deps) Resource {
	return Bind(deps, agentSpec(), agentMeta,
		func(a Agent) []string {
			return []string{formatIDPtr(a.ID), a.Name, a.Model, formatFloat(a.Temperature), formatToggle(a.Active)}
		},
		func(a Agent) []string {
			return []string{
				a.Name, a.Model, a.Prompt, formatFloat(a.Temperature),
				formatToggle(a.Tools.WebSearch), formatToggle(a.Tools.CatalogLookup),
				formatToggle(a.Tools.OrderLookup), formatToggle(a.Active),
			}
		},
		func(a *Agent, v []string) error {
			if strings.TrimSpace(v[0]) == "" {
				return fmt.Errorf("name is required")
			}
			temperature, err := parseFloat("temperature", v[3], 0.7)
			if err != nil {
				return err
			}
			a.Name = strings.TrimSpace(v[0])
			a.Model = strings.TrimSpace(v[1])
			a.Prompt = v[2]
			a.Temperature = temperature
			a.Tools = AgentTools{
				WebSearch:     parseToggle(v[4]),
				CatalogLookup: parseToggle(v[5]),
				OrderLookup:   parseToggle(v[6]),
			}
			a.Active = parseToggle(v[7])
			return nil
		})
}
