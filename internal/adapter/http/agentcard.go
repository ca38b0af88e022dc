package http

import "github.com/Strob0t/AgentRelay/internal/domain/message"

// AgentCard describes this agent's capabilities for discovery over HTTP.
type AgentCard struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	URL         string               `json:"url"`
	Version     string               `json:"version"`
	Skills      []message.Capability `json:"skills"`
}

// BuildAgentCard assembles the card from static info and the capability
// registry's current list.
func BuildAgentCard(info CardInfo, caps []message.Capability) AgentCard {
	if caps == nil {
		caps = []message.Capability{}
	}
	return AgentCard{
		Name:        info.Name,
		Description: info.Description,
		URL:         info.BaseURL,
		Version:     info.Version,
		Skills:      caps,
	}
}
