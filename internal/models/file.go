package models

import "time"

// File kinds accepted on upload.
const (
	FileTypeFolder = "folder"
	FileTypeFile   = "file"
	FileTypeImage  = "image"
)

// RootParentID is the sentinel parent value for top-level records.
const RootParentID = "0"

// ValidFileType reports whether t is one of the accepted file kinds.
func ValidFileType(t string) bool {
	return t == FileTypeFolder || t == FileTypeFile || t == FileTypeImage
}

// FileRecord is the metadata entry for a folder, file or image. LocalPath
// points at the blob on disk and is empty for folders; it is an opaque
// generated name, deliberately decoupled from the display name.
type FileRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  string    `json:"parentId"`
	LocalPath string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// IsFolder reports whether the record is a folder.
func (f *FileRecord) IsFolder() bool {
	return f.Type == FileTypeFolder
}
