package lzacfg

// NetworkConfig is the network baseline document: transit gateways, VPCs and
// the central network services delegation.
type NetworkConfig struct {
	TransitGateways        []TransitGatewayConfig  `yaml:"transitGateways" validate:"dive"`
	Vpcs                   []VpcConfig             `yaml:"vpcs" validate:"dive"`
	CentralNetworkServices *CentralNetworkServices `yaml:"centralNetworkServices,omitempty"`
}

// TransitGatewayConfig declares one transit gateway.
type TransitGatewayConfig struct {
	Name                         string `yaml:"name" validate:"required"`
	Account                      string `yaml:"account" validate:"required"`
	Region                       string `yaml:"region" validate:"required"`
	Asn                          int    `yaml:"asn" validate:"required,min=64512,max=65534"`
	DnsSupport                   string `yaml:"dnsSupport" validate:"omitempty,oneof=enable disable"`
	VpnEcmpSupport               string `yaml:"vpnEcmpSupport" validate:"omitempty,oneof=enable disable"`
	DefaultRouteTableAssociation string `yaml:"defaultRouteTableAssociation" validate:"omitempty,oneof=enable disable"`
	DefaultRouteTablePropagation string `yaml:"defaultRouteTablePropagation" validate:"omitempty,oneof=enable disable"`
}

// VpcConfig declares one VPC with its subnets and gateway attachments.
type VpcConfig struct {
	Name                      string                `yaml:"name" validate:"required"`
	Account                   string                `yaml:"account" validate:"required"`
	Region                    string                `yaml:"region" validate:"required"`
	Cidrs                     []string              `yaml:"cidrs" validate:"required,min=1,dive,cidrv4"`
	InternetGateway           bool                  `yaml:"internetGateway"`
	EnableDnsHostnames        bool                  `yaml:"enableDnsHostnames"`
	EnableDnsSupport          bool                  `yaml:"enableDnsSupport"`
	Subnets                   []SubnetConfig        `yaml:"subnets" validate:"dive"`
	TransitGatewayAttachments []TgwAttachmentConfig `yaml:"transitGatewayAttachments" validate:"dive"`
}

// SubnetConfig declares one subnet inside a VPC.
type SubnetConfig struct {
	Name             string `yaml:"name" validate:"required"`
	AvailabilityZone string `yaml:"availabilityZone" validate:"required,len=1"`
	Ipv4CidrBlock    string `yaml:"ipv4CidrBlock" validate:"required,cidrv4"`
	MapPublicIP      bool   `yaml:"mapPublicIpOnLaunch"`
}

// TgwAttachmentConfig attaches a VPC to a declared transit gateway through
// the named subnets.
type TgwAttachmentConfig struct {
	Name           string   `yaml:"name" validate:"required"`
	TransitGateway TgwRef   `yaml:"transitGateway" validate:"required"`
	Subnets        []string `yaml:"subnets" validate:"required,min=1,dive,required"`
}

// TgwRef names a transit gateway and the account that owns it.
type TgwRef struct {
	Name    string `yaml:"name" validate:"required"`
	Account string `yaml:"account" validate:"required"`
}

// CentralNetworkServices delegates central network administration.
type CentralNetworkServices struct {
	DelegatedAdminAccount string `yaml:"delegatedAdminAccount" validate:"required"`
}

// TransitGateway returns the declared transit gateway with the given name,
// or false when it is not declared.
func (c *NetworkConfig) TransitGateway(name string) (TransitGatewayConfig, bool) {
	for _, tgw := range c.TransitGateways {
		if tgw.Name == name {
			return tgw, true
		}
	}
	return TransitGatewayConfig{}, false
}

// VpcsForAccount returns every VPC declared for the account in the region.
func (c *NetworkConfig) VpcsForAccount(account, region string) []VpcConfig {
	var out []VpcConfig
	for _, vpc := range c.Vpcs {
		if vpc.Account == account && vpc.Region == region {
			out = append(out, vpc)
		}
	}
	return out
}

// TransitGatewaysForAccount returns every transit gateway declared for the
// account in the region.
func (c *NetworkConfig) TransitGatewaysForAccount(account, region string) []TransitGatewayConfig {
	var out []TransitGatewayConfig
	for _, tgw := range c.TransitGateways {
		if tgw.Account == account && tgw.Region == region {
			out = append(out, tgw)
		}
	}
	return out
}
