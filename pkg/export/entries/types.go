package entries

const (
	FORMAT_CSV  = "csv"
	FORMAT_JSON = "json"
)

// Reserved column names. These are a compatibility contract with existing
// consumers and must not change.
const (
	COL_ENTRY_UUID        = "ec5_uuid"
	COL_PARENT_UUID       = "ec5_parent_uuid"
	COL_BRANCH_OWNER_UUID = "ec5_branch_owner_uuid"
	COL_BRANCH_UUID       = "ec5_branch_uuid"
	COL_CREATED_AT        = "created_at"
	COL_UPLOADED_AT       = "uploaded_at"
	COL_CREATED_BY        = "created_by"
	COL_TITLE             = "title"
)

const CREATED_BY_UNKNOWN = "n/a"

// Location answers expand to six columns in CSV output, prefixed onto the
// mapped key in this order.
const (
	LOC_PREFIX_LATITUDE     = "lat_"
	LOC_PREFIX_LONGITUDE    = "long_"
	LOC_PREFIX_ACCURACY     = "accuracy_"
	LOC_PREFIX_UTM_NORTHING = "UTM_Northing_"
	LOC_PREFIX_UTM_EASTING  = "UTM_Easting_"
	LOC_PREFIX_UTM_ZONE     = "UTM_Zone_"
)

// JSON output nests location parts under the mapped key instead.
const (
	LOC_KEY_LATITUDE     = "latitude"
	LOC_KEY_LONGITUDE    = "longitude"
	LOC_KEY_ACCURACY     = "accuracy"
	LOC_KEY_UTM_NORTHING = "UTM_Northing"
	LOC_KEY_UTM_EASTING  = "UTM_Easting"
	LOC_KEY_UTM_ZONE     = "UTM_Zone"
)

// ParsedColumn is one output cell: Name is the column name (CSV header / JSON
// key), Value the type-appropriate representation produced by the input type
// handlers.
type ParsedColumn struct {
	Name  string
	Value interface{}
}

// MediaURLBuilder resolves a stored media filename into a download URL for
// public projects.
type MediaURLBuilder interface {
	BuildURL(projectSlug string, mediaType string, format string, filename string) string
}

// UserEmailResolver maps the uploading user to an email address for the
// created_by column of private projects.
type UserEmailResolver interface {
	ResolveEmail(userID int64) string
}
