package dto

// StorageURLsRequest asks for download URLs of several stored files
type StorageURLsRequest struct {
	StorageIDs []string `json:"storageIds" validate:"required,max=100"`
}
