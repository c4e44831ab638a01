package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Comma separated list of origins allowed to call the API
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:5176"`

	// Document storage backend: "s3" or "drive"
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"s3"`

	// AWS S3
	S3Bucket string `envconfig:"AWS_STORAGE_BUCKET_NAME" default:"essencial-form-files"`
	S3Region string `envconfig:"AWS_S3_REGION_NAME" default:"us-east-2"`

	// Google Drive (service account)
	DriveCredentialsFile string `envconfig:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	DriveParentFolderID  string `envconfig:"GOOGLE_DRIVE_PARENT_FOLDER_ID"`

	// Kommo CRM
	KommoEnabled     bool   `envconfig:"KOMMO_ENABLED"`
	KommoBaseURL     string `envconfig:"KOMMO_BASE_URL"`
	KommoAccessToken string `envconfig:"KOMMO_ACCESS_TOKEN"`

	// WhatsApp Business API
	WhatsAppEnabled       bool     `envconfig:"WHATSAPP_ENABLED"`
	WhatsAppAccessToken   string   `envconfig:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppPhoneNumberID string   `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppRecipients    []string `envconfig:"WHATSAPP_RECIPIENTS"`

	// Upper bound for one background fan-out run
	FanOutTimeoutSec uint `envconfig:"FANOUT_TIMEOUT_SEC" default:"120"`
}
