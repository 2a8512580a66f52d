package population

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/numistats/ngcpop/pkg/pagination"
)

// APIClient is the piece of the research API client the collector
// needs: fetch a URL, require HTTP 200, decode the JSON body.
type APIClient interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// groupItem is the slice of a groups-endpoint item we care about.
type groupItem struct {
	ResearchGroupID int `json:"researchGroupID"`
}

// DiscoverGroups pages through the groups endpoint for one subcategory
// and returns every research group ID, in server order.
//
// Discovery is the hard dependency of the whole run: nothing downstream
// can start without the group list, so any failure here is returned to
// the caller unrecovered.
func DiscoverGroups(ctx context.Context, api APIClient, groupsURL string, subcategoryID int) ([]int, error) {
	fetch := pagination.FetchFunc(func(ctx context.Context, page int) (pagination.Page, error) {
		var p pagination.Page
		if err := api.GetJSON(ctx, groupsPageURL(groupsURL, subcategoryID, page), &p); err != nil {
			return pagination.Page{}, err
		}
		return p, nil
	})

	items, err := pagination.FetchAll(ctx, groupsURL, fetch)
	if err != nil {
		return nil, fmt.Errorf("discover groups for subcategory %d: %w", subcategoryID, err)
	}

	ids := make([]int, 0, len(items))
	for _, raw := range items {
		var item groupItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode group item: %w", err)
		}
		ids = append(ids, item.ResearchGroupID)
	}

	groupsDiscovered.Set(float64(len(ids)))

	return ids, nil
}

// groupsPageURL builds the URL of one groups page.
func groupsPageURL(base string, subcategoryID, page int) string {
	q := url.Values{}
	q.Set("researchSubcategoryID", fmt.Sprintf("%d", subcategoryID))
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("keywords", "")
	q.Set("languageID", "")
	return base + "?" + q.Encode()
}

// populationPageURL builds the URL of one population page for a
// (group, designation) pair.
func populationPageURL(base string, designation Designation, groupID, page int) string {
	q := url.Values{}
	q.Set("researchGroupID", fmt.Sprintf("%d", groupID))
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("keywords", "")
	q.Set("populationID", "")
	return fmt.Sprintf("%s/%s/?%s", base, designation, q.Encode())
}
