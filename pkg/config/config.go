package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
	"github.com/spf13/viper"
)

// ConfigMode 配置模式
type ConfigMode string

const (
	// ModeLocal 本地配置模式
	ModeLocal ConfigMode = "local"
	// ModeNacos Nacos配置中心模式
	ModeNacos ConfigMode = "nacos"
)

// NacosConfig Nacos配置
type NacosConfig struct {
	ServerAddr string `mapstructure:"server_addr"`
	ServerPort uint64 `mapstructure:"server_port"`
	Namespace  string `mapstructure:"namespace"`
	Group      string `mapstructure:"group"`
	DataID     string `mapstructure:"data_id"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	LogDir     string `mapstructure:"log_dir"`
	CacheDir   string `mapstructure:"cache_dir"`
	LogLevel   string `mapstructure:"log_level"`
	TimeoutMs  uint64 `mapstructure:"timeout_ms"`
}

// Manager 配置管理器
type Manager struct {
	mu          sync.RWMutex
	mode        ConfigMode
	nacosClient config_client.IConfigClient
	nacosConfig *NacosConfig
	viper       *viper.Viper
	onChange    []func()
	log         *log.Helper
}

// NewManager 创建配置管理器
func NewManager(logger log.Logger) *Manager {
	v := viper.New()
	// SERVER_HTTP_ADDR 覆盖 server.http_addr
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{
		viper: v,
		log:   log.NewHelper(log.With(logger, "module", "config")),
	}
}

// LoadConfig 加载配置
// configPath: 本地配置文件路径（本地模式为完整配置，Nacos模式为连接配置）
// serviceName: 服务名称（用作Nacos DataID的前缀）
func (m *Manager) LoadConfig(configPath, serviceName string) error {
	mode := GetEnv("CONFIG_MODE", string(ModeLocal))
	m.mode = ConfigMode(strings.ToLower(mode))

	switch m.mode {
	case ModeNacos:
		return m.loadFromNacos(configPath, serviceName)
	case ModeLocal:
		return m.loadFromLocal(configPath)
	default:
		return fmt.Errorf("unsupported config mode: %s", mode)
	}
}

// loadFromLocal 从本地文件加载配置，文件不存在时仅使用默认值和环境变量
func (m *Manager) loadFromLocal(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		m.log.Warnf("config file %s not found, using defaults and environment", configPath)
		return nil
	}

	m.viper.SetConfigFile(configPath)
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read local config failed: %w", err)
	}

	m.log.Infof("loaded config from local file: %s", configPath)
	return nil
}

// loadFromNacos 从Nacos配置中心加载配置
func (m *Manager) loadFromNacos(configPath, serviceName string) error {
	localViper := viper.New()
	localViper.SetConfigFile(configPath)
	if err := localViper.ReadInConfig(); err != nil {
		return fmt.Errorf("read nacos connection config failed: %w", err)
	}

	m.nacosConfig = &NacosConfig{}
	if err := localViper.UnmarshalKey("nacos", m.nacosConfig); err != nil {
		return fmt.Errorf("unmarshal nacos config failed: %w", err)
	}
	m.applyNacosDefaults(serviceName)

	serverConfigs := []constant.ServerConfig{
		*constant.NewServerConfig(
			m.nacosConfig.ServerAddr,
			m.nacosConfig.ServerPort,
			constant.WithContextPath("/nacos"),
		),
	}

	clientConfig := *constant.NewClientConfig(
		constant.WithNamespaceId(m.nacosConfig.Namespace),
		constant.WithTimeoutMs(m.nacosConfig.TimeoutMs),
		constant.WithNotLoadCacheAtStart(true),
		constant.WithLogDir(m.nacosConfig.LogDir),
		constant.WithCacheDir(m.nacosConfig.CacheDir),
		constant.WithLogLevel(m.nacosConfig.LogLevel),
		constant.WithUsername(m.nacosConfig.Username),
		constant.WithPassword(m.nacosConfig.Password),
	)

	configClient, err := clients.NewConfigClient(
		vo.NacosClientParam{
			ClientConfig:  &clientConfig,
			ServerConfigs: serverConfigs,
		},
	)
	if err != nil {
		return fmt.Errorf("create nacos client failed: %w", err)
	}
	m.nacosClient = configClient

	content, err := configClient.GetConfig(vo.ConfigParam{
		DataId: m.nacosConfig.DataID,
		Group:  m.nacosConfig.Group,
	})
	if err != nil {
		return fmt.Errorf("get config from nacos failed: %w", err)
	}

	if err := m.readYAML(content); err != nil {
		return fmt.Errorf("parse nacos config failed: %w", err)
	}

	m.log.Infof("loaded config from nacos: %s/%s (namespace: %s)",
		m.nacosConfig.Group, m.nacosConfig.DataID, m.nacosConfig.Namespace)

	if err := m.watchConfigChange(); err != nil {
		m.log.Warnf("watch config change failed: %v", err)
	}

	return nil
}

// applyNacosDefaults 环境变量覆盖并补齐默认值
func (m *Manager) applyNacosDefaults(serviceName string) {
	c := m.nacosConfig
	c.ServerAddr = GetEnv("NACOS_SERVER_ADDR", c.ServerAddr)
	c.Namespace = GetEnv("NACOS_NAMESPACE", c.Namespace)
	c.Group = GetEnv("NACOS_GROUP", c.Group)
	c.DataID = GetEnv("NACOS_DATA_ID", c.DataID)
	c.Username = GetEnv("NACOS_USERNAME", c.Username)
	c.Password = GetEnv("NACOS_PASSWORD", c.Password)

	if c.DataID == "" {
		c.DataID = serviceName + ".yaml"
	}
	if c.ServerPort == 0 {
		c.ServerPort = 8848
	}
	if c.Group == "" {
		c.Group = "DEFAULT_GROUP"
	}
	if c.LogDir == "" {
		c.LogDir = "/tmp/nacos/log"
	}
	if c.CacheDir == "" {
		c.CacheDir = "/tmp/nacos/cache"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = 5000
	}
}

func (m *Manager) readYAML(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viper.SetConfigType("yaml")
	return m.viper.ReadConfig(strings.NewReader(content))
}

// watchConfigChange 监听配置变更
func (m *Manager) watchConfigChange() error {
	return m.nacosClient.ListenConfig(vo.ConfigParam{
		DataId: m.nacosConfig.DataID,
		Group:  m.nacosConfig.Group,
		OnChange: func(namespace, group, dataId, data string) {
			m.log.Infof("config changed: %s/%s", group, dataId)
			if err := m.readYAML(data); err != nil {
				m.log.Errorf("reload config failed: %v", err)
				return
			}
			m.mu.RLock()
			callbacks := append([]func(){}, m.onChange...)
			m.mu.RUnlock()
			for _, fn := range callbacks {
				fn()
			}
		},
	})
}

// OnChange 注册配置变更回调（仅Nacos模式触发）
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// SetDefault 设置默认值
func (m *Manager) SetDefault(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viper.SetDefault(key, value)
}

// Unmarshal 解析配置到结构体
func (m *Manager) Unmarshal(rawVal interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viper.Unmarshal(rawVal)
}

// GetString 获取字符串配置
func (m *Manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viper.GetString(key)
}

// GetMode 获取配置模式
func (m *Manager) GetMode() ConfigMode {
	return m.mode
}

// Close 关闭配置管理器
func (m *Manager) Close() error {
	if m.nacosClient != nil {
		return m.nacosClient.CancelListenConfig(vo.ConfigParam{
			DataId: m.nacosConfig.DataID,
			Group:  m.nacosConfig.Group,
		})
	}
	return nil
}
