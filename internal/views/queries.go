package views

import "fmt"

// DriverNamer renders the SQL expression for a driver's full name. It is
// satisfied by db.Dialect.
type DriverNamer interface {
	DriverName(idExpr string) string
}

// Queries is the fixed SQL for every section that reads data.
type Queries struct {
	Results      string
	Drivers      string
	Constructors string
	Races        string
	Cars         string
	Status       string
	WDC          string
	WCC          string
	AlwaysScored string
}

// QueriesFor builds the section queries for a backend.
func QueriesFor(n DriverNamer) Queries {
	return Queries{
		Results: fmt.Sprintf(`
			SELECT r.Race_ID,
			       %s AS Driver,
			       r.Constructor_ID, r.Car_ID,
			       r.Position_Order, r.Grid, r.Points, r.Status_ID, r.RaceRank
			FROM Results r
			ORDER BY r.Race_ID, r.Position_Order`, n.DriverName("r.Driver_ID")),

		Drivers:      `SELECT * FROM Drivers`,
		Constructors: `SELECT * FROM Constructors`,
		Status:       `SELECT * FROM Status`,

		Races: `
			SELECT r.Race_ID, r.Year, g.GP_Name, c.C_Name AS Circuit, c.Country, r.Laps
			FROM Races r
			JOIN GPs g ON r.GP_ID = g.GP_ID
			JOIN Circuits c ON r.Circuit_ID = c.Circuit_ID`,

		Cars: `
			SELECT c.Car_ID, c.Engine, c.Tyres, con.Con_Name AS Constructor
			FROM Cars c
			JOIN Constructors con ON c.Constructor_ID = con.Constructor_ID`,

		// ties fall back to key order
		WDC: fmt.Sprintf(`
			SELECT d.Driver_ID, %s AS Driver, SUM(r.Points) AS Total_Points
			FROM Results r
			JOIN Drivers d ON r.Driver_ID = d.Driver_ID
			GROUP BY d.Driver_ID
			ORDER BY Total_Points DESC, d.Driver_ID ASC`, n.DriverName("d.Driver_ID")),

		WCC: `
			SELECT c.Constructor_ID, c.Con_Name AS Constructor, SUM(r.Points) AS Total_Points
			FROM Results r
			JOIN Constructors c ON r.Constructor_ID = c.Constructor_ID
			GROUP BY c.Constructor_ID, c.Con_Name
			ORDER BY Total_Points DESC, c.Constructor_ID ASC`,

		// drivers without a single result are left out
		AlwaysScored: fmt.Sprintf(`
			SELECT * FROM (
				SELECT d.Driver_ID,
				       %s AS Driver,
				       (SELECT COUNT(*) FROM Results r WHERE r.Driver_ID = d.Driver_ID) AS RacesParticipated,
				       (SELECT COUNT(*) FROM Results r WHERE r.Driver_ID = d.Driver_ID AND r.Points > 0) AS RacesWithPoints
				FROM Drivers d
			) AS scored
			WHERE RacesParticipated = RacesWithPoints
			  AND RacesParticipated > 0
			ORDER BY Driver`, n.DriverName("d.Driver_ID")),
	}
}

// For returns the query fired by a section, or "" when it has none.
func (q Queries) For(s Section) string {
	switch s {
	case SectionResults:
		return q.Results
	case SectionDrivers:
		return q.Drivers
	case SectionConstructors:
		return q.Constructors
	case SectionRaces:
		return q.Races
	case SectionCars:
		return q.Cars
	case SectionStatus:
		return q.Status
	case SectionWDC:
		return q.WDC
	case SectionWCC:
		return q.WCC
	case SectionNestedQuery:
		return q.AlwaysScored
	}
	return ""
}
