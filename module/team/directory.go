package team

import (
	"encoding/json"
	"net/http"

	"github.com/anandbobba/Innovex-Service/logger"
	"github.com/gin-gonic/gin"
)

// Team maps a team to its single point of contact. The table is static
// configuration, not a managed registry; requests reference these ids
// without referential checks.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SpocID string `json:"spocId"`
}

var defaultTeams = []Team{
	{ID: "team-1", Name: "Platform", SpocID: "spoc-1"},
	{ID: "team-2", Name: "Facilities", SpocID: "spoc-2"},
	{ID: "team-3", Name: "Networking", SpocID: "spoc-3"},
}

type Directory struct {
	teams []Team
}

// NewDirectory loads the table from a JSON override or falls back to the
// built-in one.
func NewDirectory(teamsJSON string) *Directory {
	if teamsJSON == "" {
		return &Directory{teams: defaultTeams}
	}
	var teams []Team
	if err := json.Unmarshal([]byte(teamsJSON), &teams); err != nil {
		logger.Errorf("[team] bad TEAMS_JSON, using defaults: %v", err)
		return &Directory{teams: defaultTeams}
	}
	return &Directory{teams: teams}
}

func (d *Directory) Teams() []Team { return d.teams }

// HandleList serves the directory so clients can derive spocId at submit
// time instead of hardcoding the table.
func (d *Directory) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, d.teams)
}
