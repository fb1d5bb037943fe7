package cubefall

// Scene tunables.
const (
	DefaultCubeCount = 100

	CameraFov  float32 = 75
	CameraNear float32 = 0.1
	CameraFar  float32 = 1000
	CameraZ    float32 = 5

	ClearColor = "#373349"
	CubeColor  = "hotpink"

	// CubeSize is the edge length of the shared box geometry.
	CubeSize float32 = 1
)

// Motion tunables.
const (
	// SpawnFraction scales window dimensions into the initial spawn range.
	SpawnFraction float32 = 0.02

	// WrapFactor widens the half viewport height into the wrap boundary.
	WrapFactor float32 = 1.2

	// FallStep is the largest vertical step per tick.
	FallStep float32 = 0.01 * 10

	// SpinStep is the largest rotation step per tick on the x and y axes.
	SpinStep float32 = 0.01

	// ViewportDistance is the depth at which the wrap boundary is measured.
	// It does not follow the camera if the camera moves.
	ViewportDistance float32 = 5
)

// Window defaults.
const (
	WindowTitle  = "cubefall"
	WindowWidth  = 1280
	WindowHeight = 720
)
