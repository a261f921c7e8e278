package entries

import (
	"fmt"
	"net/url"
	"strings"

	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

const (
	MEDIA_TYPE_PHOTO = "photo"
	MEDIA_TYPE_AUDIO = "audio"
	MEDIA_TYPE_VIDEO = "video"

	MEDIA_FORMAT_ENTRY_ORIGINAL = "entry_original"
	MEDIA_FORMAT_AUDIO          = "audio"
	MEDIA_FORMAT_VIDEO          = "video"
)

// mediaParamsForInputType maps a media input type onto the type/format query
// parameter pair of the media API.
func mediaParamsForInputType(inputType string) (mediaType string, format string) {
	switch inputType {
	case projectTypes.INPUT_TYPE_PHOTO:
		return MEDIA_TYPE_PHOTO, MEDIA_FORMAT_ENTRY_ORIGINAL
	case projectTypes.INPUT_TYPE_AUDIO:
		return MEDIA_TYPE_AUDIO, MEDIA_FORMAT_AUDIO
	case projectTypes.INPUT_TYPE_VIDEO:
		return MEDIA_TYPE_VIDEO, MEDIA_FORMAT_VIDEO
	default:
		return "", ""
	}
}

// APIMediaURLBuilder builds media download URLs against the public media API.
type APIMediaURLBuilder struct {
	APIRoot string
}

func (b APIMediaURLBuilder) BuildURL(projectSlug string, mediaType string, format string, filename string) string {
	return fmt.Sprintf("%s/api/media/%s?type=%s&format=%s&name=%s",
		strings.TrimSuffix(b.APIRoot, "/"),
		projectSlug,
		mediaType,
		format,
		url.QueryEscape(filename),
	)
}
