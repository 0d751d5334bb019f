package info

import (
    "time"
)

// Service describes the node serving the stacks.
type Service interface {
    Identify() string
    NodeInfo() Model
}

type ServiceProvider struct {
    nodeName string
    address  string
    port     uint16
    version  string
    started  time.Time
}

func NewService(nodeName, address string, port uint16, version string) Service {
    return &ServiceProvider{
        nodeName: nodeName,
        address:  address,
        port:     port,
        version:  version,
        started:  time.Now().UTC(),
    }
}

func (sp ServiceProvider) Identify() string {
    return sp.nodeName
}

func (sp ServiceProvider) NodeInfo() Model {
    return Model{
        NodeName: sp.nodeName,
        Address:  sp.address,
        Port:     sp.port,
        Version:  sp.version,
        Started:  sp.started,
    }
}

type Identity struct {
    Identity string `json:"identity"`
}

type Model struct {
    NodeName string    `json:"node_name"`
    Address  string    `json:"address"`
    Port     uint16    `json:"port"`
    Version  string    `json:"version"`
    Started  time.Time `json:"started"`
}
