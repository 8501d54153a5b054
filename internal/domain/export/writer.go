package export

// Writer serializes one worksheet. rows hold cell values in header order;
// moneyCols lists the zero-based columns to format as currency.
type Writer interface {
	Write(sheet string, headers []string, rows [][]any, moneyCols []int) ([]byte, error)
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)
