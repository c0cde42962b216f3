// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sops decrypts and encrypts SOPS-protected YAML documents, used for
// config files that carry database credentials
package sops

import (
	"errors"
	"fmt"
	"os"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	yamlstore "github.com/getsops/sops/v3/stores/yaml"
	"github.com/getsops/sops/v3/version"
	"gopkg.in/yaml.v3"
)

const (
	GcpKmsResourceIdEnvVar = "TRUSTLEDGER_GCP_KMS_RESOURCE_ID"
	AwsKmsKeyArnsEnvVar    = "TRUSTLEDGER_AWS_KMS_KEY_ARNS"
	AwsKmsProfileEnvVar    = "TRUSTLEDGER_AWS_KMS_PROFILE"
)

var ErrAlreadyEncrypted = errors.New("already encrypted")

// IsEncrypted reports whether a YAML document carries SOPS metadata
func IsEncrypted(data []byte) bool {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	_, ok := doc["sops"]
	return ok
}

func Decrypt(data []byte) ([]byte, error) {
	ret, err := decrypt.Data(data, "yaml")
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func Encrypt(data []byte) ([]byte, error) {
	store := yamlstore.NewStore(&config.YAMLStoreConfig{})

	// prevent double encryption
	branches, err := store.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("error loading data: %w", err)
	}
	for _, branch := range branches {
		for _, b := range branch {
			if b.Key == "sops" {
				return nil, ErrAlreadyEncrypted
			}
		}
	}

	tree := sopsapi.Tree{Branches: branches}
	keyGroups, err := getMasterKeyGroupsFromEnv()
	if err != nil {
		return nil, err
	}
	tree.Metadata = sopsapi.Metadata{
		KeyGroups: keyGroups,
		Version:   version.Version,
	}

	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed generating data key: %v", errs)
	}
	if err := scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	}); err != nil {
		return nil, fmt.Errorf("failed encrypt: %w", err)
	}

	encrypted, err := store.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("failed output: %w", err)
	}
	return encrypted, nil
}

func getMasterKeyGroupsFromEnv() ([]sopsapi.KeyGroup, error) {
	keyGroups := []sopsapi.KeyGroup{}

	if rid := os.Getenv(GcpKmsResourceIdEnvVar); rid != "" {
		keys := []skeys.MasterKey{}
		for _, k := range gcpkms.MasterKeysFromResourceIDString(rid) {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if arns := os.Getenv(AwsKmsKeyArnsEnvVar); arns != "" {
		keys := []skeys.MasterKey{}
		profile := os.Getenv(AwsKmsProfileEnvVar)
		for _, k := range awskms.MasterKeysFromArnString(arns, nil, profile) {
			keys = append(keys, k)
		}
		if len(keys) > 0 {
			keyGroups = append(keyGroups, keys)
		}
	}

	if len(keyGroups) == 0 {
		return nil, fmt.Errorf(
			"SOPS requires at least one master key to encrypt: set %s and/or %s",
			GcpKmsResourceIdEnvVar,
			AwsKmsKeyArnsEnvVar,
		)
	}

	return keyGroups, nil
}
