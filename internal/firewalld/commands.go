package firewalld

// Permanent scopes every command to the permanent configuration store.
const Permanent = "--permanent"

// PortProto joins a port (or range) and protocol the way firewall-cmd expects.
func PortProto(port, protocol string) string {
	return port + "/" + protocol
}

// Zone commands

func PathZone(zone string) []string {
	return []string{Permanent, "--path-zone=" + zone}
}

func NewZone(zone string) []string {
	return []string{Permanent, "--new-zone=" + zone}
}

func NewZoneFromFile(file string) []string {
	return []string{Permanent, "--new-zone-from-file=" + file}
}

func DeleteZone(zone string) []string {
	return []string{Permanent, "--delete-zone=" + zone}
}

func InfoZone(zone string) []string {
	return []string{Permanent, "--info-zone=" + zone}
}

// Service commands

func PathService(service string) []string {
	return []string{Permanent, "--path-service=" + service}
}

func NewService(service string) []string {
	return []string{Permanent, "--new-service=" + service}
}

func DeleteService(service string) []string {
	return []string{Permanent, "--delete-service=" + service}
}

func QueryPort(service, port, protocol string) []string {
	return []string{Permanent, "--service=" + service, "--query-port=" + PortProto(port, protocol)}
}

func AddPort(service, port, protocol string) []string {
	return []string{Permanent, "--service=" + service, "--add-port=" + PortProto(port, protocol)}
}

func RemovePort(service, port, protocol string) []string {
	return []string{Permanent, "--service=" + service, "--remove-port=" + PortProto(port, protocol)}
}

func GetPorts(service string) []string {
	return []string{Permanent, "--service=" + service, "--get-ports"}
}

func GetDescription(service string) []string {
	return []string{Permanent, "--service=" + service, "--get-description"}
}

func SetDescription(service, text string) []string {
	return []string{Permanent, "--service=" + service, "--set-description=" + text}
}

func GetShort(service string) []string {
	return []string{Permanent, "--service=" + service, "--get-short"}
}

func SetShort(service, text string) []string {
	return []string{Permanent, "--service=" + service, "--set-short=" + text}
}
