// Package population collects NGC population reports: it discovers
// research groups for a subcategory, fetches per-group population pages
// for both designations over a bounded worker pool, and turns raw coin
// records into graded population rows.
package population

// Default research API endpoints.
const (
	DefaultGroupsURL     = "https://production.api.aws.ccg-ops.com/api/coins/research/groups/"
	DefaultPopulationURL = "https://production.api.aws.ccg-ops.com/api/coins/research/population"
)

// Designation selects which population sub-resource to query.
type Designation string

const (
	// DesignationProof selects the proof (PF) population bucket.
	DesignationProof Designation = "PF"

	// DesignationMintState selects the mint state (MS) population bucket.
	DesignationMintState Designation = "MS"
)

// Designations lists the population buckets fetched for every group.
var Designations = []Designation{DesignationProof, DesignationMintState}

// GradePopulation is the graded-coin count for one display grade.
type GradePopulation struct {
	Grade string `json:"Grade"`
	Count int    `json:"Count"`
}

// CoinResult is one row of the final report: a single coin's
// populations across all grades, in descending grade order.
//
// The JSON field names, including the space in "Coin Name", are the
// report's external contract and must not change.
type CoinResult struct {
	GroupID     int               `json:"GroupID"`
	CoinName    string            `json:"Coin Name"`
	Designation string            `json:"Designation"`
	Grades      []GradePopulation `json:"Grades"`
}
