// Package discovery 通过 mDNS 在局域网内广播服务
package discovery

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/grandcat/zeroconf"

	"github.com/todoboard/backend/internal/infrastructure/config"
	"github.com/todoboard/backend/internal/infrastructure/log"
)

const (
	// ServiceType mDNS 服务类型
	ServiceType = "_todoboard._tcp"
	// Domain mDNS 域
	Domain = "local."
)

// ServiceInfo 广播的服务信息
type ServiceInfo struct {
	InstanceName string
	Port         int
	TxtRecords   map[string]string
}

// registerFunc 与 zeroconf.Register 签名一致的注册函数，测试时替换
type registerFunc func(instance, service, domain string, port int, text []string) (shutdowner, error)

type shutdowner interface {
	Shutdown()
}

func zeroconfRegister(instance, service, domain string, port int, text []string) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, text, nil)
}

// Advertiser mDNS 服务广播器
type Advertiser struct {
	mu       sync.Mutex
	cfg      *config.DiscoveryConfig
	port     int
	server   shutdowner
	register registerFunc
	logger   *slog.Logger
}

// NewAdvertiser 创建 mDNS 广播器
func NewAdvertiser(cfg *config.DiscoveryConfig, serverCfg *config.ServerConfig) *Advertiser {
	return &Advertiser{
		cfg:      cfg,
		port:     serverCfg.Port(),
		register: zeroconfRegister,
		logger:   log.NewModuleLogger("discovery", "mdns_advertiser"),
	}
}

// BuildServiceInfo 构建服务信息
func BuildServiceInfo(instanceName string, port int, version string) ServiceInfo {
	return ServiceInfo{
		InstanceName: instanceName,
		Port:         port,
		TxtRecords: map[string]string{
			"version": version,
			"path":    "/todos",
		},
	}
}

// Start 开始广播服务，未启用时直接返回
func (a *Advertiser) Start(version string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.cfg.Enabled {
		return nil
	}
	if a.server != nil {
		return fmt.Errorf("advertiser is already running")
	}
	if a.port <= 0 {
		return fmt.Errorf("invalid port for mDNS advertising: %d", a.port)
	}

	info := BuildServiceInfo(a.cfg.InstanceName, a.port, version)
	txt := make([]string, 0, len(info.TxtRecords))
	for k, v := range info.TxtRecords {
		txt = append(txt, fmt.Sprintf("%s=%s", k, v))
	}

	server, err := a.register(info.InstanceName, ServiceType, Domain, info.Port, txt)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	a.server = server

	a.logger.Info("mDNS advertiser started",
		"instance", info.InstanceName,
		"service", ServiceType,
		"port", info.Port,
	)
	return nil
}

// Stop 停止广播
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil

	a.logger.Info("mDNS advertiser stopped")
}

// IsRunning 是否正在广播
func (a *Advertiser) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}
