package models

// StudentDocument is a file uploaded at registration time, linked to its
// owner by student code. Documents have no update path.
type StudentDocument struct {
	ID          int64  `db:"id" json:"id"`
	StudentCode string `db:"student_code" json:"studentCode"`
	FileName    string `db:"file_name" json:"fileName"`
	FileType    string `db:"file_type" json:"fileType"`
	Data        []byte `db:"data" json:"-"`
}

// DocumentView renders a document with its payload base64 encoded.
// json encoding of []byte produces base64, so Data is exposed directly.
type DocumentView struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Data     []byte `json:"data"`
}
