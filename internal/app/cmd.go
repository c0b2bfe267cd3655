package app

// Command 는 애플리케이션의 기동 모드를 나타낸다.
type Command string

const (
	// CommandServe 는 API 서버 모드로 기동함을 나타낸다.
	CommandServe Command = "serve"
	// CommandIndexes 는 MongoDB 인덱스 생성만 수행함을 나타낸다.
	CommandIndexes Command = "indexes"
	// CommandHealthcheck 는 헬스체크를 실행함을 나타낸다.
	// distroless 환경에서의 Docker 헬스체크용.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand 는 커맨드라인 인자에서 서브커맨드를 해석한다.
// 인자가 없거나 지원하지 않는 커맨드면 CommandServe를 반환한다.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "indexes":
		return CommandIndexes
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
