package jobs

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/tags"
)

// FileName builds an output name following the IFOS-DESCRIPTION_TAGS-START-DURATION.ext convention.
func FileName(ifos, description string, ts tags.TagSet, seg domain.Segment, ext string) string {
	desc := description
	if key := ts.Key(); key != "" {
		desc += "_" + key
	}
	return fmt.Sprintf("%s-%s-%d-%d%s", ifos, desc, seg.Start, seg.Duration(), ext)
}

// ArtifactPath joins FileName onto the directory path.
func ArtifactPath(dir domain.Directory, ifos, description string, ts tags.TagSet, seg domain.Segment, ext string) string {
	return filepath.Join(dir.Path, FileName(ifos, description, ts, seg, ext))
}
