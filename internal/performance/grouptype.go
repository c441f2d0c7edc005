// Package performance holds the detector output types for transaction
// performance issues: the problem record and the registry of issue
// group types it references.
package performance

import "fmt"

// GroupType identifies a category of performance issue. Instances are
// registered once at package load and referenced by id on the wire.
type GroupType struct {
	Id          int
	Slug        string
	Description string
}

var groupTypesById = map[int]GroupType{}
var groupTypesBySlug = map[string]GroupType{}

func registerGroupType(groupType GroupType) GroupType {
	if _, ok := groupTypesById[groupType.Id]; ok {
		panic(fmt.Sprintf("duplicate group type id[%v]", groupType.Id))
	}
	if _, ok := groupTypesBySlug[groupType.Slug]; ok {
		panic(fmt.Sprintf("duplicate group type slug[%s]", groupType.Slug))
	}
	groupTypesById[groupType.Id] = groupType
	groupTypesBySlug[groupType.Slug] = groupType
	return groupType
}

var (
	GroupTypeSlowDbQuery = registerGroupType(GroupType{
		Id:          1001,
		Slug:        "performance_slow_db_query",
		Description: "Slow DB Query",
	})
	GroupTypeRenderBlockingAsset = registerGroupType(GroupType{
		Id:          1004,
		Slug:        "performance_render_blocking_asset_span",
		Description: "Large Render Blocking Asset",
	})
	GroupTypeNPlusOneDbQueries = registerGroupType(GroupType{
		Id:          1006,
		Slug:        "performance_n_plus_one_db_queries",
		Description: "N+1 Query",
	})
	GroupTypeConsecutiveDbQueries = registerGroupType(GroupType{
		Id:          1007,
		Slug:        "performance_consecutive_db_queries",
		Description: "Consecutive DB Queries",
	})
	GroupTypeFileIoMainThread = registerGroupType(GroupType{
		Id:          1008,
		Slug:        "performance_file_io_main_thread",
		Description: "File IO on Main Thread",
	})
	GroupTypeConsecutiveHttp = registerGroupType(GroupType{
		Id:          1009,
		Slug:        "performance_consecutive_http",
		Description: "Consecutive HTTP",
	})
	GroupTypeNPlusOneApiCalls = registerGroupType(GroupType{
		Id:          1010,
		Slug:        "performance_n_plus_one_api_calls",
		Description: "N+1 API Call",
	})
	GroupTypeUncompressedAssets = registerGroupType(GroupType{
		Id:          1012,
		Slug:        "performance_uncompressed_assets",
		Description: "Uncompressed Asset",
	})
	GroupTypeDbMainThread = registerGroupType(GroupType{
		Id:          1013,
		Slug:        "performance_db_main_thread",
		Description: "DB on Main Thread",
	})
	GroupTypeLargeHttpPayload = registerGroupType(GroupType{
		Id:          1015,
		Slug:        "performance_large_http_payload",
		Description: "Large HTTP payload",
	})
	GroupTypeHttpOverhead = registerGroupType(GroupType{
		Id:          1016,
		Slug:        "performance_http_overhead",
		Description: "HTTP/1.1 Overhead",
	})
)

// GroupTypeById resolves a registered group type from its wire id.
func GroupTypeById(id int) (GroupType, bool) {
	groupType, ok := groupTypesById[id]
	return groupType, ok
}

// GroupTypeBySlug resolves a registered group type from its slug.
func GroupTypeBySlug(slug string) (GroupType, bool) {
	groupType, ok := groupTypesBySlug[slug]
	return groupType, ok
}
