package config

import (
	"fmt"
	"sort"
	"strings"
)

// athenaRegions lists the regions where Athena is available. Queries in any
// other region fail at submission, so the region flag is validated up front.
var athenaRegions = map[string]struct{}{
	"af-south-1":     {},
	"ap-east-1":      {},
	"ap-northeast-1": {},
	"ap-northeast-2": {},
	"ap-south-1":     {},
	"ap-south-2":     {},
	"ap-southeast-1": {},
	"ap-southeast-2": {},
	"ap-southeast-3": {},
	"ap-southeast-4": {},
	"ca-central-1":   {},
	"cn-north-1":     {},
	"cn-northwest-1": {},
	"eu-central-1":   {},
	"eu-central-2":   {},
	"eu-north-1":     {},
	"eu-south-1":     {},
	"eu-west-1":      {},
	"eu-west-2":      {},
	"eu-west-3":      {},
	"me-central-1":   {},
	"me-south-1":     {},
	"sa-east-1":      {},
	"us-east-1":      {},
	"us-east-2":      {},
	"us-gov-east-1":  {},
	"us-gov-west-1":  {},
	"us-west-1":      {},
	"us-west-2":      {},
}

// IsAthenaRegion reports whether Athena is available in region.
func IsAthenaRegion(region string) bool {
	_, ok := athenaRegions[strings.TrimSpace(region)]
	return ok
}

// ValidateRegion returns an error naming the supported regions when region
// is not in the Athena allow-list.
func ValidateRegion(region string) error {
	if IsAthenaRegion(region) {
		return nil
	}
	return fmt.Errorf("region %q does not support Athena (supported: %s)",
		region, strings.Join(AthenaRegions(), ", "))
}

// AthenaRegions returns the sorted allow-list.
func AthenaRegions() []string {
	regions := make([]string, 0, len(athenaRegions))
	for region := range athenaRegions {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
