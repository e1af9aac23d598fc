package config

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level" mapstructure:"level"`                                  // debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding" mapstructure:"encoding"`                         // json/console
	EnableColor      bool     `json:"enableColor" yaml:"enableColor" mapstructure:"enableColor"`                // console 模式下是否彩色
	Development      bool     `json:"development" yaml:"development" mapstructure:"development"`                // 开发模式，error 级别附带堆栈
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths" mapstructure:"outputPaths"`                // 普通日志输出
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths" mapstructure:"errorOutputPaths"` // 内部错误输出
}

// DefaultLoggerConfig 默认输出到标准输出，容器里直接 docker logs 查看
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:            "info",
		Encoding:         "json",
		EnableColor:      false,
		Development:      false,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
