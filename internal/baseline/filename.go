package baseline

import "fmt"

// Baseline file type suffixes.
const (
	FileTypeChecksums   = "dependency-checksums"
	FileTypeTrustedKeys = "pgp-trusted-keys"
)

// FileName derives a baseline filename from the project identity and file
// type. Pure string derivation, same inputs always give the same name.
func FileName(group, artifact, fileType, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", group, artifact, fileType, ext)
}

// ChecksumFileName names the checksum baseline for p in format f.
func ChecksumFileName(p Project, f Format) string {
	return FileName(p.Group, p.Artifact, FileTypeChecksums, f.ChecksumExt())
}

// TrustFileName names the trusted-keys baseline for p. Its extension is
// fixed regardless of format.
func TrustFileName(p Project) string {
	return FileName(p.Group, p.Artifact, FileTypeTrustedKeys, "list")
}
