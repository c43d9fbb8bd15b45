package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion        string
	SQSEventQueueURL string
	IoTMQTTEndpoint  string
	BarrierTopic     string

	JWTSecret          string
	JWTExpirationHours time.Duration

	// Camera source passed to ffmpeg: a V4L2 device path, an rtsp:// URL
	// or an http:// MJPEG endpoint.
	CameraDevice string
	CameraFPS    int
	CameraWidth  int
	CameraHeight int

	// Plate-region classifier sidecar.
	DetectorEndpoint string

	// Recognition policy constants. Defaults match the deployed cascade
	// tuning; overridable for testing with synthetic inputs.
	PlateMinArea      int
	PlateScaleFactor  float64
	PlateMinNeighbors int
	PlatePattern      string

	// Start hours of the five chart buckets (morning, midmorning, midday,
	// afternoon, night). Night runs to end of day.
	ChartBucketHours [5]int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))

	cameraFPS, _ := strconv.Atoi(getEnv("CAMERA_FPS", "10"))
	cameraWidth, _ := strconv.Atoi(getEnv("CAMERA_WIDTH", "1280"))
	cameraHeight, _ := strconv.Atoi(getEnv("CAMERA_HEIGHT", "720"))

	plateMinArea, _ := strconv.Atoi(getEnv("PLATE_MIN_AREA", "500"))
	plateScale, _ := strconv.ParseFloat(getEnv("PLATE_SCALE_FACTOR", "1.1"), 64)
	plateNeighbors, _ := strconv.Atoi(getEnv("PLATE_MIN_NEIGHBORS", "4"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "gateaccess"),
		DBPassword: getEnv("DB_PASSWORD", "gateaccess"),
		DBName:     getEnv("DB_NAME", "gate_access_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:        getEnv("AWS_REGION", "eu-west-1"),
		SQSEventQueueURL: getEnv("SQS_EVENT_QUEUE_URL", ""),
		IoTMQTTEndpoint:  getEnv("IOT_MQTT_ENDPOINT", ""),
		BarrierTopic:     getEnv("BARRIER_COMMAND_TOPIC", "gate/barrier/command"),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		CameraDevice: getEnv("CAMERA_DEVICE", "/dev/video1"),
		CameraFPS:    cameraFPS,
		CameraWidth:  cameraWidth,
		CameraHeight: cameraHeight,

		DetectorEndpoint: getEnv("DETECTOR_ENDPOINT", "http://localhost:9090"),

		PlateMinArea:      plateMinArea,
		PlateScaleFactor:  plateScale,
		PlateMinNeighbors: plateNeighbors,
		PlatePattern:      getEnv("PLATE_PATTERN", `^[A-Z]{3}\d{4}$`),

		ChartBucketHours: [5]int{6, 9, 12, 15, 18},
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
